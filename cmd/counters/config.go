package main

import (
	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/counter"
	"github.com/d0ngw/counters/http"
	"github.com/d0ngw/counters/lock"
	"github.com/d0ngw/counters/service"
)

// Config the config of the counters server
type Config struct {
	c.AppConfig `yaml:",inline"`
	Store       *counter.StoreConfig `yaml:"store"`
	Stripes     *lock.StripeConfig   `yaml:"stripes"`
	HTTP        *http.Config         `yaml:"http"`
}

// Parse fills the unset sections with defaults, then parses every section
func (p *Config) Parse() error {
	if p.ValidateRuleConfig == nil {
		p.ValidateRuleConfig = service.DefaultValidateRuleConfig()
	} else {
		p.ValidateRuleConfig.Merge(service.DefaultValidateRuleConfig())
	}
	if p.Store == nil {
		p.Store = &counter.StoreConfig{}
	}
	if p.Stripes == nil {
		p.Stripes = lock.DefaultStripeConfig()
	}
	if p.HTTP == nil {
		p.HTTP = http.NewConfig(":8080")
	}
	return c.Parse(p)
}
