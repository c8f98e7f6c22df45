package validator

import (
	"time"

	"github.com/aisgo/ais-validate/logger"

	"go.uber.org/zap"
)

// pass 单次验证的全部状态，构造后不再读取引擎的可变状态
type pass struct {
	id     string
	form   string
	source Source
	now    time.Time
	fields []*fieldEntry

	callbacks    map[string]CallbackFunc
	conditionals map[string]ConditionalFunc
	resolver     messageResolver
	identities   *identities
	callback     Callback
	observer     Observer
	log          *logger.Logger

	errs Errors
}

// run 依次验证选中的字段，返回本次验证的错误列表
func (p *pass) run() Errors {
	ctx := &EvalContext{source: p.source, now: p.now}
	for _, entry := range p.fields {
		field, ok := p.resolve(entry)
		if !ok {
			continue
		}
		if !p.gate(entry, field) {
			continue
		}
		p.evaluate(ctx, field)
	}
	return p.errs
}

// resolve 定位字段的实时值并生成快照
func (p *pass) resolve(entry *fieldEntry) (*Snapshot, bool) {
	if p.source == nil {
		return nil, false
	}
	el, ok := p.source.Lookup(entry.name)
	if !ok || el == nil {
		p.log.Debug("Field has no value source, skipped",
			zap.String("form", p.form),
			zap.String("name", entry.name),
		)
		return nil, false
	}

	kind := el.Kind
	if kind == "" {
		kind = KindText
	}
	return &Snapshot{
		ID:      p.identities.assign(entry.name, el),
		Name:    entry.name,
		Display: entry.display,
		Rules:   entry.rules,
		Value:   el.Value,
		Checked: el.Checked,
		Kind:    kind,
		Element: el,
	}, true
}

// gate 执行 depends 条件，函数优先于具名条件
func (p *pass) gate(entry *fieldEntry, field *Snapshot) bool {
	if entry.depends != nil {
		return entry.depends(field)
	}
	if entry.dependsOn == "" {
		return true
	}
	cond, ok := p.conditionals[entry.dependsOn]
	if !ok {
		p.log.Warn("Conditional is not registered, field skipped",
			zap.String("form", p.form),
			zap.String("name", entry.name),
			zap.String("depends", entry.dependsOn),
		)
		return false
	}
	return cond(field)
}

// evaluate 从左到右执行字段的每条规则
func (p *pass) evaluate(ctx *EvalContext, field *Snapshot) {
	required := hasRequired(field.Rules)
	for _, token := range SplitRules(field.Rules) {
		rule := ParseRule(token)

		// 非必填且为空时只执行回调规则
		if !required && field.empty() && !rule.IsCallback() {
			continue
		}

		failed, name := p.check(ctx, field, rule)
		if !failed {
			continue
		}

		message := p.resolver.resolve(field, ParsedRule{Name: name, Param: rule.Param, Negated: rule.Negated})
		p.errs = p.errs.add(field, name, message)
		if p.observer != nil {
			p.observer.ObserveFailure(p.form, name)
		}
	}
}

// check 执行单条规则，返回是否失败以及用于消息与错误记录的规则名
// 未知规则与未注册的回调不会失败
func (p *pass) check(ctx *EvalContext, field *Snapshot, rule ParsedRule) (bool, string) {
	if fn, ok := Builtin(rule.Name); ok {
		return !fn(ctx, field, rule.Param), rule.Name
	}
	if !rule.IsCallback() {
		return false, rule.Name
	}

	name := rule.CallbackName()
	fn, ok := p.callbacks[name]
	if !ok {
		return false, name
	}
	return !fn(field.Value, rule.Param, field), name
}

// logErrors 未指定回调时的默认回调
func (p *pass) logErrors(errs Errors, ctx *Context) {
	if len(errs) == 0 {
		return
	}
	p.log.Debug("Validation failed",
		zap.String("form", ctx.Form),
		zap.String("pass_id", ctx.PassID),
		zap.Any("errors", errs.ByField()),
	)
}
