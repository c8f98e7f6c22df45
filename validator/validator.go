package validator

import (
	"maps"
	"sync"
	"time"

	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/utils/id-generator/ulid"

	playground "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

/* ========================================================================
 * Engine - 声明式字段验证引擎
 * ========================================================================
 * 职责: 按字段配置的规则串验证字段当前值，聚合错误并回调
 * 流程（每次验证从零开始）:
 *   Select   -> 选择字段（空选择表示全部字段，未知字段告警并忽略）
 *   Resolve  -> 从 Source 定位实时值，找不到则跳过该字段
 *   Gate     -> 执行 depends 条件，返回 false 则跳过该字段
 *   Evaluate -> 从左到右执行规则，失败消息按字段合并
 *   Finalize -> 回调恰好执行一次，返回是否全部通过
 * 使用示例:
 *     e := validator.New(validator.MapSource(values), []validator.FieldConfig{
 *         {Name: "email", Display: "Email", Rules: "required|valid_email"},
 *         {Name: "password", Rules: "required|min_length[8]"},
 *         {Name: "password_confirm", Display: "Confirmation", Rules: "matches[password]"},
 *     }, nil)
 *     if !e.ValidateForm() {
 *         // e.Errors()
 *     }
 * ======================================================================== */

// Callback 验证结果回调，每次验证恰好执行一次
// errs 在下一次验证开始后不再保证有效
type Callback func(errs Errors, ctx *Context)

// Context 回调上下文
type Context struct {
	Source Source
	Engine *Engine
	Form   string
	PassID string
}

// Observer 验证过程观察者（指标等）
type Observer interface {
	ObservePass(form string, passed bool, fields int, duration time.Duration)
	ObserveFailure(form, rule string)
}

// PassIDGenerator 验证 ID 生成器
type PassIDGenerator interface {
	GenerateString() string
}

// Defaults 引擎默认配置，构造时复制，实例之间互不影响
type Defaults struct {
	Messages map[string]string
	Callback Callback
}

// DefaultConfig 返回一份新的默认配置
func DefaultConfig() Defaults {
	return Defaults{Messages: DefaultMessages()}
}

// Option 引擎选项
type Option func(*Engine)

// WithLogger 设置日志
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDefaults 设置默认消息模板与默认回调
func WithDefaults(d Defaults) Option {
	return func(e *Engine) {
		if d.Messages != nil {
			e.defaults = maps.Clone(d.Messages)
		}
		if d.Callback != nil {
			e.defaultCallback = d.Callback
		}
	}
}

// WithClock 设置时间来源（date 规则中的 today）
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithFormName 设置表单名（用于标识生成、日志与指标）
func WithFormName(name string) Option {
	return func(e *Engine) {
		e.form = name
	}
}

// WithObserver 设置观察者
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithPassIDGenerator 设置验证 ID 生成器
func WithPassIDGenerator(g PassIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.passIDs = g
		}
	}
}

// WithDisplay 设置错误展示面（ClearErrors 使用）
func WithDisplay(d Display) Option {
	return func(e *Engine) {
		e.display = d
	}
}

// Engine 字段验证引擎
type Engine struct {
	mu              sync.RWMutex
	source          Source
	form            string
	model           fieldModel
	callback        Callback
	defaultCallback Callback
	messages        map[string]string
	defaults        map[string]string
	registry        *Registry
	errors          Errors

	checker  *playground.Validate
	log      *logger.Logger
	clock    func() time.Time
	observer Observer
	passIDs  PassIDGenerator
	display  Display
}

// New 创建验证引擎
// callback 为 nil 时使用默认回调
func New(source Source, fields []FieldConfig, callback Callback, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		callback: callback,
		messages: make(map[string]string),
		defaults: DefaultMessages(),
		registry: NewRegistry(),
		checker:  configChecker,
		log:      logger.NewNop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.passIDs == nil {
		e.passIDs = ulid.NewGenerator(nil, ulid.WithClock(e.clock))
	}
	e.model = buildFieldModel(e.checker, fields, e.warnMisconfigured)
	return e
}

func (e *Engine) warnMisconfigured(cfg FieldConfig, err error) {
	e.log.Warn("Field skipped due to misconfiguration, check that name/names and rules are set",
		zap.String("form", e.form),
		zap.String("name", cfg.Name),
		zap.Strings("names", cfg.Names),
		zap.String("rules", cfg.Rules),
		zap.Error(err),
	)
}

// SetRules 整体替换字段配置
func (e *Engine) SetRules(fields []FieldConfig) *Engine {
	model := buildFieldModel(e.checker, fields, e.warnMisconfigured)
	e.mu.Lock()
	e.model = model
	e.mu.Unlock()
	return e
}

// SetSource 替换值来源（例如每次请求绑定新的提交数据）
func (e *Engine) SetSource(source Source) *Engine {
	e.mu.Lock()
	e.source = source
	e.mu.Unlock()
	return e
}

// SetMessage 覆盖消息模板，key 为规则名或 "field.rule"
func (e *Engine) SetMessage(key, template string) *Engine {
	e.mu.Lock()
	e.messages[key] = template
	e.mu.Unlock()
	return e
}

// RegisterCallback 注册 callback_<name> 规则，后注册者覆盖先注册者
func (e *Engine) RegisterCallback(name string, fn CallbackFunc) *Engine {
	if !e.registry.RegisterCallback(name, fn) {
		e.log.Warn("Callback ignored: name and function are required", zap.String("name", name))
	}
	return e
}

// RegisterConditional 注册 depends 条件，后注册者覆盖先注册者
func (e *Engine) RegisterConditional(name string, fn ConditionalFunc) *Engine {
	if !e.registry.RegisterConditional(name, fn) {
		e.log.Warn("Conditional ignored: name and function are required", zap.String("name", name))
	}
	return e
}

// Registry 引擎持有的注册表
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Form 表单名
func (e *Engine) Form() string {
	return e.form
}

// Fields 已配置的字段名（声明顺序）
func (e *Engine) Fields() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.model.order...)
}

// Errors 最近一次验证的错误列表
func (e *Engine) Errors() Errors {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.errors
}

// ValidateForm 验证全部字段
func (e *Engine) ValidateForm() bool {
	return e.ValidateFields()
}

// ValidateFields 验证指定字段，未指定时验证全部字段
func (e *Engine) ValidateFields(names ...string) bool {
	p := e.beginPass(names)
	errs := p.run()

	e.mu.Lock()
	e.errors = errs
	e.mu.Unlock()

	if p.callback != nil {
		p.callback(errs, &Context{Source: p.source, Engine: e, Form: e.form, PassID: p.id})
	}

	passed := len(errs) == 0
	if e.observer != nil {
		e.observer.ObservePass(e.form, passed, len(p.fields), e.clock().Sub(p.now))
	}
	e.log.Debug("Validation pass finished",
		zap.String("form", e.form),
		zap.String("pass_id", p.id),
		zap.Int("fields", len(p.fields)),
		zap.Int("errors", len(errs)),
	)
	return passed
}

// ClearErrors 清空指定字段在展示面上的错误消息
func (e *Engine) ClearErrors(names ...string) {
	e.mu.RLock()
	display, source, form := e.display, e.source, e.form
	entries := make([]*fieldEntry, 0, len(names))
	for _, name := range names {
		entry, ok := e.model.entries[name]
		if !ok {
			e.log.Warn("Field does not exist", zap.String("form", form), zap.String("name", name))
			continue
		}
		entries = append(entries, entry)
	}
	e.mu.RUnlock()

	if display == nil || source == nil {
		return
	}
	ids := newIdentities(form)
	for _, entry := range entries {
		el, ok := source.Lookup(entry.name)
		if !ok {
			continue
		}
		display.Clear(ErrorSlot(ids.assign(entry.name, el)))
	}
}

// beginPass 在读锁下复制本次验证需要的全部状态
func (e *Engine) beginPass(names []string) *pass {
	callbacks, conditionals := e.registry.snapshot()

	e.mu.RLock()
	defer e.mu.RUnlock()

	p := &pass{
		id:           e.passIDs.GenerateString(),
		form:         e.form,
		source:       e.source,
		now:          e.clock(),
		callbacks:    callbacks,
		conditionals: conditionals,
		identities:   newIdentities(e.form),
		observer:     e.observer,
		log:          e.log,
		resolver: messageResolver{
			overrides: maps.Clone(e.messages),
			defaults:  e.defaults,
			displayOf: e.model.displayOf,
		},
	}
	p.callback = e.callback
	if p.callback == nil {
		p.callback = e.defaultCallback
	}
	if p.callback == nil {
		p.callback = p.logErrors
	}

	if len(names) == 0 {
		for _, name := range e.model.order {
			p.fields = append(p.fields, e.model.entries[name])
		}
		return p
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		entry, ok := e.model.entries[name]
		if !ok {
			e.log.Warn("Field does not exist", zap.String("form", e.form), zap.String("name", name))
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		p.fields = append(p.fields, entry)
	}
	return p
}
