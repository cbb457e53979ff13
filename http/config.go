package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	c "github.com/d0ngw/counters/common"
)

type handlerWithMiddleware struct {
	handlerFunc http.HandlerFunc
	middlewares []Middleware
}

// Config Http配置
type Config struct {
	Addr          string        `yaml:"addr"`          //Http监听地址
	ReadTimeout   time.Duration `yaml:"read_timeout"`  //读超时
	WriteTimeout  time.Duration `yaml:"write_timeout"` //写超时
	MaxConns      int           `yaml:"max_conns"`     //最大的并发连接数
	middlewares   []Middleware
	controllers   []Controller
	handles       map[string]*handlerWithMiddleware
	controllerMux sync.Mutex
}

// NewConfig 创建配置
func NewConfig(addr string) *Config {
	conf := &Config{Addr: addr}
	conf.init()
	return conf
}

func (p *Config) init() {
	if p.handles == nil {
		p.handles = map[string]*handlerWithMiddleware{}
	}
}

// Parse implements common.Configurer
func (p *Config) Parse() error {
	p.init()
	if p.ReadTimeout < 0 || p.WriteTimeout < 0 {
		return fmt.Errorf("invalid http timeout,read:%s,write:%s", p.ReadTimeout, p.WriteTimeout)
	}
	if p.MaxConns < 0 {
		return fmt.Errorf("invalid http max_conns %d", p.MaxConns)
	}
	return nil
}

// RegController 注册controller中的所有处理函数
func (p *Config) RegController(controller Controller) error {
	if controller == nil {
		return fmt.Errorf("can't reg nil controller")
	}

	p.controllerMux.Lock()
	defer p.controllerMux.Unlock()
	p.init()

	handlers, err := ReflectHandlers(controller)
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		c.Warnf("Can't find handler in %T#%s", controller, controller.GetName())
		return nil
	}

	middlewares := controller.GetMiddlewares()
	for pattern, h := range handlers {
		if err := p.regHandle(pattern, &handlerWithMiddleware{h, middlewares}); err != nil {
			return err
		}
		c.Infof("Register controller %T#%s,pattern:%s", controller, controller.GetName(), pattern)
	}
	p.controllers = append(p.controllers, controller)
	return nil
}

func (p *Config) regHandle(pattern string, handle *handlerWithMiddleware) error {
	if _, ok := p.handles[pattern]; ok {
		return fmt.Errorf("duplicate pattern:%s", pattern)
	}
	p.handles[pattern] = handle
	return nil
}

// RegHandleFunc 注册pattern的处理函数handlerFunc
func (p *Config) RegHandleFunc(pattern string, handlerFunc http.HandlerFunc) error {
	p.controllerMux.Lock()
	defer p.controllerMux.Unlock()
	p.init()
	return p.regHandle(pattern, &handlerWithMiddleware{handlerFunc, nil})
}

// RegMiddleware 注册全局的middleware,需要在Service.Init之前完成
func (p *Config) RegMiddleware(middleware Middleware) error {
	if middleware == nil {
		return fmt.Errorf("invalid middleware")
	}
	p.middlewares = append(p.middlewares, middleware)
	return nil
}

// Patterns 返回已注册的所有pattern
func (p *Config) Patterns() []string {
	p.controllerMux.Lock()
	defer p.controllerMux.Unlock()
	patterns := make([]string, 0, len(p.handles))
	for pattern := range p.handles {
		patterns = append(patterns, strings.TrimSpace(pattern))
	}
	return patterns
}
