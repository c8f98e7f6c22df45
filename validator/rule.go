package validator

import (
	"regexp"
	"strings"
)

/* ========================================================================
 * Rule Grammar - 规则语法
 * ========================================================================
 * 职责: 将单个规则 token 解析为 (名称, 参数, 取反标记)
 * 格式:
 *   required
 *   min_length[5]
 *   !callback_check_username
 * ======================================================================== */

var ruleRegex = regexp.MustCompile(`^(.+?)\[(.+)\]$`)

// ParsedRule 解析后的规则
type ParsedRule struct {
	Name    string
	Param   string
	Negated bool
}

// HasParam 规则是否带参数
func (r ParsedRule) HasParam() bool {
	return r.Param != ""
}

// IsCallback 是否为 callback_xxx 规则
func (r ParsedRule) IsCallback() bool {
	return strings.HasPrefix(r.Name, callbackPrefix)
}

// CallbackName 去掉 callback_ 前缀后的回调名
func (r ParsedRule) CallbackName() string {
	return strings.TrimPrefix(r.Name, callbackPrefix)
}

// ParseRule 解析规则 token
// 取反标记只会被剥离并记录，不会反转验证结果。
// 不做空白裁剪；无名称的 token 查找失败后被静默跳过。
func ParseRule(token string) ParsedRule {
	var rule ParsedRule
	rule.Name = token
	if parts := ruleRegex.FindStringSubmatch(token); parts != nil {
		rule.Name = parts[1]
		rule.Param = parts[2]
	}
	if strings.HasPrefix(rule.Name, negateMarker) {
		rule.Name = rule.Name[len(negateMarker):]
		rule.Negated = true
	}
	return rule
}

// SplitRules 按 | 拆分规则串
func SplitRules(rules string) []string {
	return strings.Split(rules, ruleSeparator)
}

// hasRequired 规则串中是否出现 required（子串匹配）
func hasRequired(rules string) bool {
	return strings.Contains(rules, string(RuleRequired))
}
