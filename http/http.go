// Package http 提供基本的http服务
package http

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	c "github.com/d0ngw/counters/common"
	"golang.org/x/net/netutil"
)

type tcpKeepAliveListener struct {
	*net.TCPListener
}

// Accept 接受连接并开启keep-alive
func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err = tc.SetKeepAlive(true); err != nil {
		tc.Close()
		return nil, err
	}
	if err = tc.SetKeepAlivePeriod(3 * time.Minute); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

// GraceableHandler 安全地关闭的处理器
type GraceableHandler struct {
	handler   http.Handler
	waitGroup *sync.WaitGroup
}

func (p *GraceableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.waitGroup.Add(1)
	defer p.waitGroup.Done()

	p.handler.ServeHTTP(w, r)
}

// Service Http服务
type Service struct {
	c.BaseService
	Conf         *Config
	listener     net.Listener
	handler      http.Handler
	graceHandler *GraceableHandler
	server       *http.Server
	lock         sync.Mutex
}

// NewService 创建Http服务
func NewService(conf *Config) *Service {
	return &Service{
		BaseService: c.BaseService{SName: "http", Order: 2},
		Conf:        conf,
	}
}

// Init 初始化Http服务,绑定所有注册的处理函数
func (p *Service) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.Conf == nil {
		return errors.New("no http config")
	}

	serveMux := http.NewServeMux()
	for pattern, handler := range p.Conf.handles {
		if handler == nil {
			return errors.New("can't bind nil handler to " + pattern)
		}
		serveMux.Handle(pattern, p.handleWithMiddleware(handler))
	}
	if _, ok := p.Conf.handles["/"]; !ok {
		serveMux.Handle("/", p.handleWithMiddleware(&handlerWithMiddleware{handlerFunc: NotFound}))
	}

	if p.Conf.Addr == "" {
		p.Conf.Addr = ":http"
	}

	graceHandler := &GraceableHandler{
		handler:   serveMux,
		waitGroup: &sync.WaitGroup{}}

	p.server = &http.Server{
		Addr:         p.Conf.Addr,
		ReadTimeout:  p.Conf.ReadTimeout,
		WriteTimeout: p.Conf.WriteTimeout,
		Handler:      graceHandler}
	p.graceHandler = graceHandler
	p.handler = serveMux
	return nil
}

// Handler 返回绑定了所有处理函数的http.Handler,需要在Init之后调用
func (p *Service) Handler() http.Handler {
	return p.handler
}

// handleWithMiddleware 依次调用各个middleware
func (p *Service) handleWithMiddleware(handler *handlerWithMiddleware) http.HandlerFunc {
	middlewares := append(append([]Middleware{}, p.Conf.middlewares...), handler.middlewares...)

	h := handler.handlerFunc
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Handle(h)
	}
	return h
}

// Start 启动Http服务,开始端口监听和服务处理
func (p *Service) Start() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	ln, err := net.Listen("tcp", p.Conf.Addr)
	if err != nil {
		c.Errorf("Listen at %s fail,error:%v", p.Conf.Addr, err)
		return false
	}
	c.Infof("Listen at %s", ln.Addr())

	tcpListener := tcpKeepAliveListener{ln.(*net.TCPListener)}
	if p.Conf.MaxConns > 0 {
		p.listener = netutil.LimitListener(tcpListener, p.Conf.MaxConns)
	} else {
		p.listener = tcpListener
	}

	p.graceHandler.waitGroup.Add(1)
	go func(listener net.Listener) {
		defer p.graceHandler.waitGroup.Done()
		err := p.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			var errLevel = c.Error
			if strings.Contains(err.Error(), "use of closed network connection") {
				errLevel = c.Warn
			}
			c.Logf(errLevel, "server.Serve return with %v", err)
		}
	}(p.listener)
	return true
}

// Addr 返回监听的地址,未启动时返回配置的地址
func (p *Service) Addr() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.listener != nil {
		return p.listener.Addr().String()
	}
	return p.Conf.Addr
}

// Stop 停止Http服务,关闭端口监听并等待正在处理的请求完成
func (p *Service) Stop() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.listener != nil {
		if err := p.listener.Close(); err != nil {
			c.Errorf("Close listener error:%v", err)
		}
	}

	//等待所有的请求
	c.Infof("Waiting shutdown")
	p.graceHandler.waitGroup.Wait()
	c.Infof("Finish shutdown")

	p.listener = nil
	return true
}
