package main

import (
	"flag"
	"fmt"
	"os"

	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/counter"
	"github.com/d0ngw/counters/http"
	"github.com/d0ngw/counters/service"
)

var (
	confDir  = flag.String("conf_dir", "conf", "the directory of the config files")
	confFile = flag.String("conf", "counters.yaml", "the config file name")
)

func main() {
	flag.Parse()

	conf := &Config{}
	if err := c.LoadConfig(conf, "", *confDir, *confFile); err != nil {
		fmt.Fprintf(os.Stderr, "load config fail,err:%v\n", err)
		os.Exit(1)
	}
	if err := conf.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "parse config fail,err:%v\n", err)
		os.Exit(1)
	}

	services, err := build(conf)
	if err != nil {
		c.Criticalf("build services fail,err:%v", err)
		os.Exit(1)
	}

	starts := c.NewServices(services, true)
	stops := c.NewServices(services, false)
	if !starts.Init() || !starts.Start() {
		c.Criticalf("start services fail")
		if err := stops.Stop(); err != nil {
			c.Errorf("stop services fail,err:%v", err)
		}
		c.SyncLog()
		os.Exit(1)
	}
	c.Infof("counters started,store:%s,http:%s", conf.Store.GetKind(), conf.HTTP.Addr)

	hook := c.NewShutdownhook()
	hook.AddHook(func() {
		if err := stops.Stop(); err != nil {
			c.Errorf("stop services fail,err:%v", err)
		}
		c.SyncLog()
	})
	hook.WaitShutdown()
}

// build creates the store and the services over it
func build(conf *Config) ([]c.Service, error) {
	store, err := counter.New(conf.Store.GetKind(), counter.WithStripeConfig(conf.Stripes))
	if err != nil {
		return nil, err
	}

	validator := c.NewRuleValidateService(conf)
	counters := service.NewCounters(store, validator)

	if err = conf.HTTP.RegMiddleware(http.AccessLog); err != nil {
		return nil, err
	}
	if err = conf.HTTP.RegMiddleware(http.Recovery); err != nil {
		return nil, err
	}
	if err = conf.HTTP.RegController(http.NewCountersController(counters)); err != nil {
		return nil, err
	}
	return []c.Service{validator, counters, http.NewService(conf.HTTP)}, nil
}
