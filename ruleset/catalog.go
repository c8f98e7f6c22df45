package ruleset

import (
	"maps"
	"slices"
	"strings"

	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/validator"
)

// Extensions 服务级的回调规则与 depends 条件，对所有表单生效
type Extensions struct {
	Callbacks    map[string]validator.CallbackFunc
	Conditionals map[string]validator.ConditionalFunc
}

// Catalog 已加载的表单目录，按请求构建独立的验证引擎
type Catalog struct {
	set  Set
	ext  Extensions
	opts []validator.Option
}

// NewCatalog 创建表单目录，opts 作用于每个构建的引擎
func NewCatalog(set Set, ext Extensions, opts ...validator.Option) (*Catalog, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		set: set.normalized(),
		ext: Extensions{
			Callbacks:    maps.Clone(ext.Callbacks),
			Conditionals: maps.Clone(ext.Conditionals),
		},
		opts: opts,
	}
	c.pruneMisconfigured()
	return c, nil
}

// pruneMisconfigured 配置错误的字段只在加载时告警一次，之后不再进入引擎
func (c *Catalog) pruneMisconfigured() {
	for name, form := range c.set.Forms {
		usable := make([]Field, 0, len(form.Fields))
		for _, field := range form.Fields {
			if validator.CheckFieldConfig(field.FieldConfig) == nil {
				usable = append(usable, field)
			}
		}
		if len(usable) == len(form.Fields) {
			continue
		}
		// 由引擎自身的配置检查输出告警
		validator.New(nil, form.Configs(), nil, append(slices.Clone(c.opts), validator.WithFormName(name))...)
		form.Fields = usable
		c.set.Forms[name] = form
	}
}

// Unbound 规则集中引用但没有注册的 depends 条件与 callback_ 回调
// depends 未注册的字段会被跳过，callback 未注册的规则永远通过
func (c *Catalog) Unbound() (conditionals, callbacks []string) {
	for _, name := range c.set.Names() {
		for _, field := range c.set.Forms[name].Fields {
			if dep := field.DependsOn; dep != "" {
				if _, ok := c.ext.Conditionals[dep]; !ok && !slices.Contains(conditionals, dep) {
					conditionals = append(conditionals, dep)
				}
			}
			for _, token := range validator.SplitRules(field.Rules) {
				rule := validator.ParseRule(token)
				if !rule.IsCallback() {
					continue
				}
				cb := rule.CallbackName()
				if _, ok := c.ext.Callbacks[cb]; !ok && !slices.Contains(callbacks, cb) {
					callbacks = append(callbacks, cb)
				}
			}
		}
	}
	return conditionals, callbacks
}

// Len 表单数量
func (c *Catalog) Len() int {
	return len(c.set.Forms)
}

// Names 表单名（排序）
func (c *Catalog) Names() []string {
	return c.set.Names()
}

// Form 按名称查找表单
func (c *Catalog) Form(name string) (Form, bool) {
	return c.set.Form(name)
}

// Engine 为表单构建验证引擎
// 表单不存在时返回 ErrCodeFormNotFound
func (c *Catalog) Engine(name string, src validator.Source, cb validator.Callback, opts ...validator.Option) (*validator.Engine, error) {
	form, ok := c.set.Form(name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrCodeFormNotFound, nil, "form %q not found", name)
	}

	all := make([]validator.Option, 0, len(c.opts)+len(opts)+1)
	all = append(all, validator.WithFormName(strings.ToLower(name)))
	all = append(all, c.opts...)
	all = append(all, opts...)

	e := validator.New(src, form.Configs(), cb, all...)
	for key, tmpl := range form.Messages {
		e.SetMessage(key, tmpl)
	}
	for _, field := range form.Fields {
		for rule, tmpl := range field.Messages {
			for _, fieldName := range namesOf(field.FieldConfig) {
				e.SetMessage(validator.MessageKey(fieldName, rule), tmpl)
			}
		}
	}
	for cbName, fn := range c.ext.Callbacks {
		e.RegisterCallback(cbName, fn)
	}
	for condName, fn := range c.ext.Conditionals {
		e.RegisterConditional(condName, fn)
	}
	return e, nil
}
