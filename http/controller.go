package http

import (
	"fmt"
	"net/http"
	"path"
	"reflect"
	"strings"
)

// Controller 接口定义http处理器
type Controller interface {
	// GetName 控制器的名称
	GetName() string
	// GetPath 路径前缀,PatternMethods中的路径都相对于该前缀
	GetPath() string
	// GetPatternMethods 返回pattern与处理方法名的映射,pattern可以带有请求方法,例如"GET /{name}"
	GetPatternMethods() map[string]string
	// GetMiddlewares 只作用于该控制器的middleware
	GetMiddlewares() []Middleware
}

// BaseController 表示一个控制器
type BaseController struct {
	Name           string            // Controller的名称
	Path           string            // Controller的路径
	PatternMethods map[string]string // pattern -> 方法名
	Middlewares    []Middleware
}

// GetName implements Controller
func (p *BaseController) GetName() string {
	return p.Name
}

// GetPath implements Controller
func (p *BaseController) GetPath() string {
	return p.Path
}

// GetPatternMethods implements Controller
func (p *BaseController) GetPatternMethods() map[string]string {
	return p.PatternMethods
}

// GetMiddlewares implements Controller
func (p *BaseController) GetMiddlewares() []Middleware {
	return p.Middlewares
}

var handlerFuncType = reflect.TypeOf(http.HandlerFunc(nil))

// ReflectHandlers 按照PatternMethods查找controller中签名为http.HandlerFunc的可导出方法,
// 返回的key是加上了controller路径前缀的完整pattern
func ReflectHandlers(controller Controller) (handlers map[string]http.HandlerFunc, err error) {
	val := reflect.ValueOf(controller)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, fmt.Errorf("controller must be a valid pointer")
	}

	handlers = map[string]http.HandlerFunc{}
	for pattern, methodName := range controller.GetPatternMethods() {
		method := val.MethodByName(methodName)
		if !method.IsValid() {
			return nil, fmt.Errorf("can't find method %s in %T", methodName, controller)
		}
		if !method.Type().ConvertibleTo(handlerFuncType) {
			return nil, fmt.Errorf("method %s of %T is not a http.HandlerFunc", methodName, controller)
		}
		fullPattern := JoinPattern(controller.GetPath(), pattern)
		handlers[fullPattern] = method.Convert(handlerFuncType).Interface().(http.HandlerFunc)
	}
	return handlers, nil
}

// JoinPattern 将prefix拼接到pattern的路径部分之前,保留pattern中的请求方法和主机
func JoinPattern(prefix, pattern string) string {
	pattern = strings.TrimSpace(pattern)
	var method string
	if i := strings.IndexByte(pattern, ' '); i > 0 {
		method, pattern = pattern[:i], strings.TrimSpace(pattern[i+1:])
	} else if isMethod(pattern) {
		method, pattern = pattern, ""
	}

	var host string
	if i := strings.IndexByte(pattern, '/'); i > 0 && isHost(pattern[:i]) {
		host, pattern = pattern[:i], pattern[i:]
	}

	joined := path.Join("/", prefix, pattern)
	if strings.HasSuffix(pattern, "/") && joined != "/" {
		joined += "/"
	}
	joined = host + joined
	if method != "" {
		return method + " " + joined
	}
	return joined
}

func isMethod(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isHost(s string) bool {
	return s == "localhost" || strings.ContainsAny(s, ".:")
}
