package ruleset

import (
	"maps"
	"slices"
	"strings"

	"github.com/aisgo/ais-validate/conf"
	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/validator"

	playground "github.com/go-playground/validator/v10"
)

/* ========================================================================
 * Rule Set - 表单规则集
 * ========================================================================
 * 职责: 从配置文件加载命名表单的字段规则与消息模板，按表单名构建验证引擎
 * 配置示例 (YAML):
 *   forms:
 *     signup:
 *       messages:
 *         required: "Please fill in %s."
 *       fields:
 *         - name: email
 *           display: Email
 *           rules: required|valid_email
 *         - names: phone, mobile
 *           rules: numeric
 *           messages:
 *             numeric: "%s may only contain digits."
 * 注意: viper 的 key 不区分大小写，表单名统一按小写处理
 * ======================================================================== */

// Field 表单字段配置，Messages 为字段级消息覆盖（key 为规则名）
type Field struct {
	validator.FieldConfig `mapstructure:",squash" yaml:",inline"`
	Messages              map[string]string `mapstructure:"messages" yaml:"messages"`
}

// Form 单个表单
type Form struct {
	Fields   []Field           `mapstructure:"fields" yaml:"fields" validate:"required,min=1"`
	Messages map[string]string `mapstructure:"messages" yaml:"messages"`
}

// Configs 引擎使用的字段配置
func (f Form) Configs() []validator.FieldConfig {
	out := make([]validator.FieldConfig, 0, len(f.Fields))
	for _, field := range f.Fields {
		out = append(out, field.FieldConfig)
	}
	return out
}

// FieldNames 展开后的字段名（声明顺序，重复名只保留一次）
func (f Form) FieldNames() []string {
	var names []string
	for _, field := range f.Fields {
		for _, name := range namesOf(field.FieldConfig) {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// Set 规则集
type Set struct {
	Forms map[string]Form `mapstructure:"forms" yaml:"forms" validate:"dive"`
}

// NewLoader 创建规则集加载器（支持逗号分隔的 names）
func NewLoader(configPath, configName, configType string, opts ...conf.Option) conf.Loader {
	return conf.NewLoader(configPath, configName, configType, withHooks(opts)...)
}

// NewContentLoader 从内存内容加载规则集
func NewContentLoader(content []byte, configType string, opts ...conf.Option) conf.Loader {
	return conf.NewContentLoader(content, configType, withHooks(opts)...)
}

func withHooks(opts []conf.Option) []conf.Option {
	return append([]conf.Option{conf.WithDecodeHook(conf.StringToTrimmedSliceHook(","))}, opts...)
}

// Load 加载并校验规则集
func Load(loader conf.Loader) (Set, error) {
	var set Set
	if err := loader.Load(&set); err != nil {
		return Set{}, errors.Wrap(errors.ErrCodeRuleSetInvalid, "load rule set", err)
	}
	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set.normalized(), nil
}

// Validate 校验规则集结构
func (s Set) Validate() error {
	if err := playground.New(playground.WithRequiredStructEnabled()).Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeRuleSetInvalid, "invalid rule set", err)
	}
	return nil
}

// normalized 表单名转小写
func (s Set) normalized() Set {
	out := Set{Forms: make(map[string]Form, len(s.Forms))}
	for name, form := range s.Forms {
		out.Forms[strings.ToLower(name)] = form
	}
	return out
}

// Names 表单名（排序）
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s.Forms))
}

// Form 按名称查找表单
func (s Set) Form(name string) (Form, bool) {
	form, ok := s.Forms[strings.ToLower(name)]
	return form, ok
}

func namesOf(cfg validator.FieldConfig) []string {
	if len(cfg.Names) > 0 {
		return cfg.Names
	}
	if cfg.Name == "" {
		return nil
	}
	return []string{cfg.Name}
}
