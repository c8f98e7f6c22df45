package validator

import (
	"maps"
	"strings"
)

/* ========================================================================
 * Message Resolver - 错误消息解析
 * ========================================================================
 * 查找顺序:
 *   1. 字段级覆盖 "field.rule"
 *   2. 全局覆盖 "rule"
 *   3. 内置默认模板
 *   4. 通用兜底消息
 * 模板中第一个 %s 替换为字段显示名，第二个 %s 替换为参数
 * （参数指向已配置字段时使用该字段的显示名）
 * ======================================================================== */

const placeholder = "%s"

var defaultMessages = map[string]string{
	"required":                   "The %s field is required.",
	"matches":                    "The %s field does not match the %s field.",
	"default":                    "The %s field is still set to default, please change.",
	"valid_email":                "The %s field must contain a valid email address.",
	"valid_emails":               "The %s field must contain all valid email addresses.",
	"min_length":                 "The %s field must be at least %s characters in length.",
	"max_length":                 "The %s field must not exceed %s characters in length.",
	"exact_length":               "The %s field must be exactly %s characters in length.",
	"greater_than":               "The %s field must contain a number greater than %s.",
	"less_than":                  "The %s field must contain a number less than %s.",
	"alpha":                      "The %s field must only contain alphabetical characters.",
	"alpha_numeric":              "The %s field must only contain alpha-numeric characters.",
	"alpha_dash":                 "The %s field must only contain alpha-numeric characters, underscores, and dashes.",
	"numeric":                    "The %s field must contain only numbers.",
	"integer":                    "The %s field must contain an integer.",
	"decimal":                    "The %s field must contain a decimal number.",
	"is_natural":                 "The %s field must contain only positive numbers.",
	"is_natural_no_zero":         "The %s field must contain a number greater than zero.",
	"valid_ip":                   "The %s field must contain a valid IP.",
	"valid_base64":               "The %s field must contain a base64 string.",
	"valid_credit_card":          "The %s field must contain a valid credit card number.",
	"is_file_type":               "The %s field must contain only %s files.",
	"valid_url":                  "The %s field must contain a valid URL.",
	"greater_than_date":          "The %s field must contain a more recent date than %s.",
	"less_than_date":             "The %s field must contain an older date than %s.",
	"greater_than_or_equal_date": "The %s field must contain a date that's at least as recent as %s.",
	"less_than_or_equal_date":    "The %s field must contain a date that's %s or older.",
}

// DefaultMessages 返回内置消息模板的副本
func DefaultMessages() map[string]string {
	return maps.Clone(defaultMessages)
}

// MessageKey 字段级消息覆盖键
func MessageKey(field, rule string) string {
	return field + messageKeySep + rule
}

// messageResolver 按优先级解析消息模板
type messageResolver struct {
	overrides map[string]string
	defaults  map[string]string
	// displayOf 参数指向已配置字段时返回其显示名
	displayOf func(name string) (string, bool)
}

func (r messageResolver) template(field, rule string) (string, bool) {
	if tmpl, ok := r.overrides[MessageKey(field, rule)]; ok && tmpl != "" {
		return tmpl, true
	}
	if tmpl, ok := r.overrides[rule]; ok && tmpl != "" {
		return tmpl, true
	}
	if tmpl, ok := r.defaults[rule]; ok && tmpl != "" {
		return tmpl, true
	}
	return "", false
}

// resolve 生成最终消息
func (r messageResolver) resolve(field *Snapshot, rule ParsedRule) string {
	tmpl, ok := r.template(field.Name, rule.Name)
	if !ok {
		return "An error has occurred with the " + field.Display + " field."
	}

	message := strings.Replace(tmpl, placeholder, field.Display, 1)
	if rule.HasParam() {
		arg := rule.Param
		if r.displayOf != nil {
			if display, found := r.displayOf(rule.Param); found {
				arg = display
			}
		}
		message = strings.Replace(message, placeholder, arg, 1)
	}
	return message
}
