package validator

import (
	playground "github.com/go-playground/validator/v10"
)

/* ========================================================================
 * Field Model - 字段模型
 * ========================================================================
 * 职责: 字段配置（名称、显示名、规则串、依赖条件）
 * 配置在 SetRules 时整体替换；配置校验依赖 go-playground/validator
 * ======================================================================== */

// ConditionalFunc depends 条件函数，返回 true 时才验证该字段
type ConditionalFunc func(field *Snapshot) bool

// CallbackFunc 自定义回调规则 (callback_xxx)
// 返回 false 表示验证失败
type CallbackFunc func(value, param string, field *Snapshot) bool

// FieldConfig 调用方声明的字段配置
//
//	validator.FieldConfig{Name: "email", Display: "Email", Rules: "required|valid_email"}
//	validator.FieldConfig{Names: []string{"phone", "mobile"}, Rules: "numeric"}
type FieldConfig struct {
	Name    string   `mapstructure:"name" yaml:"name" json:"name,omitempty" validate:"required_without=Names"`
	Names   []string `mapstructure:"names" yaml:"names" json:"names,omitempty" validate:"required_without=Name,dive,required"`
	Display string   `mapstructure:"display" yaml:"display" json:"display,omitempty"`
	Rules   string   `mapstructure:"rules" yaml:"rules" json:"rules" validate:"required"`

	// DependsOn 已注册的 conditional 名称
	DependsOn string `mapstructure:"depends" yaml:"depends" json:"depends,omitempty"`
	// Depends 条件函数，优先于 DependsOn
	Depends ConditionalFunc `mapstructure:"-" yaml:"-" json:"-"`
}

// fieldNames 展开 name / names
func (c FieldConfig) fieldNames() []string {
	if len(c.Names) > 0 {
		return c.Names
	}
	return []string{c.Name}
}

// fieldEntry 展开后的单个字段
type fieldEntry struct {
	name      string
	display   string
	rules     string
	depends   ConditionalFunc
	dependsOn string
}

// fieldModel 字段名 -> 配置，保留声明顺序
type fieldModel struct {
	order   []string
	entries map[string]*fieldEntry
}

// newConfigChecker 配置校验器
func newConfigChecker() *playground.Validate {
	return playground.New(playground.WithRequiredStructEnabled())
}

var configChecker = newConfigChecker()

// CheckFieldConfig 检查字段配置是否可用（name / names 与 rules 必填）
// 不可用的字段在引擎中被跳过并告警
func CheckFieldConfig(cfg FieldConfig) error {
	return configChecker.Struct(cfg)
}

// buildFieldModel 构建字段模型，配置错误的字段通过 warn 回调报告并跳过
func buildFieldModel(checker *playground.Validate, configs []FieldConfig, warn func(cfg FieldConfig, err error)) fieldModel {
	model := fieldModel{entries: make(map[string]*fieldEntry, len(configs))}
	for _, cfg := range configs {
		if err := checker.Struct(cfg); err != nil {
			warn(cfg, err)
			continue
		}
		for _, name := range cfg.fieldNames() {
			display := cfg.Display
			if display == "" {
				display = name
			}
			if _, exists := model.entries[name]; !exists {
				model.order = append(model.order, name)
			}
			model.entries[name] = &fieldEntry{
				name:      name,
				display:   display,
				rules:     cfg.Rules,
				depends:   cfg.Depends,
				dependsOn: cfg.DependsOn,
			}
		}
	}
	return model
}

// displayOf 已配置字段的显示名
func (m fieldModel) displayOf(name string) (string, bool) {
	entry, ok := m.entries[name]
	if !ok {
		return "", false
	}
	return entry.display, true
}
