package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	c "github.com/d0ngw/counters/common"
)

// Middleware 定义中间件接口
type Middleware interface {
	// Handle 包装next,返回新的处理函数
	Handle(next http.HandlerFunc) http.HandlerFunc
}

// MiddlewareFunc 函数形式的Middleware
type MiddlewareFunc func(next http.HandlerFunc) http.HandlerFunc

// Handle implements Middleware
func (f MiddlewareFunc) Handle(next http.HandlerFunc) http.HandlerFunc {
	return f(next)
}

// statusWriter 记录响应的状态码和长度
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (p *statusWriter) WriteHeader(status int) {
	if p.status == 0 {
		p.status = status
	}
	p.ResponseWriter.WriteHeader(status)
}

func (p *statusWriter) Write(b []byte) (int, error) {
	if p.status == 0 {
		p.status = http.StatusOK
	}
	n, err := p.ResponseWriter.Write(b)
	p.size += n
	return n, err
}

// AccessLog 记录每个请求的方法、路径、状态码、响应长度和耗时
var AccessLog MiddlewareFunc = func(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		c.Infof("%s %s %s %d %d %s", r.RemoteAddr, r.Method, r.URL.RequestURI(), sw.status, sw.size, time.Since(start))
	}
}

// Recovery 捕获处理函数中的panic,返回500
var Recovery MiddlewareFunc = func(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				c.Errorf("handle %s %s panic:%v\n%s", r.Method, r.URL.RequestURI(), e, debug.Stack())
				RenderError(w, r, NewStatusError(http.StatusInternalServerError, fmt.Sprintf("internal error: %v", e)))
			}
		}()
		next(w, r)
	}
}
