package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// StrValidator 字符串验证器
type StrValidator interface {
	//Vlidate 验证字符串参数是否符合规则
	Validate(param string) bool
}

// StringLenValidator 字符串长度验证,按照字符数计算
type StringLenValidator struct {
	min int //最小长度
	max int //最大长度
}

// Validate 验证字符串的长度
func (p *StringLenValidator) Validate(param string) bool {
	strLen := utf8.RuneCountInString(param)
	return p.min <= strLen && strLen <= p.max
}

// NotEmptyValidator 非空
type NotEmptyValidator struct {
}

// Validate 验证字符串是否为空
func (p *NotEmptyValidator) Validate(param string) bool {
	if len(param) == 0 {
		return false
	}
	return len(strings.TrimSpace(param)) > 0
}

// Int64Validator 64位整数验证
type Int64Validator struct {
	min int64
	max int64
}

// Validate 验证是否是在[min,max]之间的64位整数
func (p *Int64Validator) Validate(param string) bool {
	v, err := ParseInt64(param)
	if err != nil {
		return false
	}
	return p.min <= v && v <= p.max
}

// RegExValidator 正则表达式验证
type RegExValidator struct {
	pattern *regexp.Regexp
	empty   bool //是否允许为空
}

// Validate 验证是否匹配正则表达式
func (p *RegExValidator) Validate(param string) bool {
	if len(param) == 0 {
		return p.empty
	}
	return p.pattern.MatchString(param)
}

// ParseInt 解析int
func ParseInt(param string) (v int, err error) {
	v, err = strconv.Atoi(strings.TrimSpace(param))
	return
}

// ParseInt64 解析int64
func ParseInt64(param string) (v int64, err error) {
	v, err = strconv.ParseInt(strings.TrimSpace(param), 10, 64)
	return
}

// ValidatorNewer 创建验证器的函数类型
type ValidatorNewer func(conf map[string]string) (StrValidator, error)

// NewNotEmptyValidator 创建非空验证器
func NewNotEmptyValidator(conf map[string]string) (StrValidator, error) {
	return vNOTEMPTY, nil
}

// NewStrLenValidator 创建字符串长度验证,conf["min"],最小值;conf["max"],最大值
func NewStrLenValidator(conf map[string]string) (StrValidator, error) {
	minLen, err := ParseInt(conf["min"])
	if err != nil {
		return nil, err
	}
	maxLen, err := ParseInt(conf["max"])
	if err != nil {
		return nil, err
	}
	if minLen < 0 || maxLen < 0 || minLen > maxLen {
		return nil, fmt.Errorf("Invalid str length,minLen:%v,maxLen:%v", minLen, maxLen)
	}
	return &StringLenValidator{min: minLen, max: maxLen}, nil
}

// NewInt64Validator 创建int64验证,conf["min"],最小值;conf["max"],最大值
func NewInt64Validator(conf map[string]string) (StrValidator, error) {
	min, err := ParseInt64(conf["min"])
	if err != nil {
		return nil, err
	}
	max, err := ParseInt64(conf["max"])
	if err != nil {
		return nil, err
	}
	if min > max {
		return nil, fmt.Errorf("Invalid min %d,max %d", min, max)
	}
	return &Int64Validator{min: min, max: max}, nil
}

// NewRegexValidator 创建正则表达式验证,conf["pattern"] 正则表达式
func NewRegexValidator(conf map[string]string) (StrValidator, error) {
	pattern := conf["pattern"]
	allowEmpty := "true" == strings.ToLower(conf["empty"])
	if len(pattern) == 0 {
		return nil, fmt.Errorf("Invalid pattern %s", pattern)
	}
	reg, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegExValidator{pattern: reg, empty: allowEmpty}, nil
}

//默认的构建器的名称
const (
	VNOTEMPTY = "notempty" //无构建参数
	VSTRLEN   = "strlen"
	VINT64    = "i64"
	VREGEX    = "regex"
)

var (
	vNOTEMPTY        = &NotEmptyValidator{}
	validateRegister = NewCopyOnWriteMap[string, ValidatorNewer]()
)

// RegValidatorNewer 根据名称注册验证器构建函数
func RegValidatorNewer(name string, validator ValidatorNewer) {
	if err := validateRegister.PutIfAbsent(name, validator); err != nil {
		panic("Duplicate validator " + err.Error())
	}
}

// NewValidatorByConf 根据配置conf["name"]及其对应的参数构建验证器
func NewValidatorByConf(conf map[string]string) (StrValidator, error) {
	name := conf["name"]
	if f, ok := validateRegister.Get(name); ok {
		return f(conf)
	}
	return nil, fmt.Errorf("Can't find the validator name:%s", name)
}

//初始化注册内置的验证器
func init() {
	RegValidatorNewer(VNOTEMPTY, NewNotEmptyValidator)
	RegValidatorNewer(VSTRLEN, NewStrLenValidator)
	RegValidatorNewer(VINT64, NewInt64Validator)
	RegValidatorNewer(VREGEX, NewRegexValidator)
}
