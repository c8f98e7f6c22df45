package validator

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

/* ========================================================================
 * Built-in Rules - 内置验证规则
 * ========================================================================
 * 职责: 固定的内置规则集合，均为无副作用的纯函数
 * 签名: (上下文, 字段快照, 参数) -> 是否通过
 * ======================================================================== */

// RuleName 内置规则名（封闭枚举）
type RuleName string

const (
	RuleRequired               RuleName = "required"
	RuleDefault                RuleName = "default"
	RuleMatches                RuleName = "matches"
	RuleValidEmail             RuleName = "valid_email"
	RuleValidEmails            RuleName = "valid_emails"
	RuleMinLength              RuleName = "min_length"
	RuleMaxLength              RuleName = "max_length"
	RuleExactLength            RuleName = "exact_length"
	RuleGreaterThan            RuleName = "greater_than"
	RuleLessThan               RuleName = "less_than"
	RuleAlpha                  RuleName = "alpha"
	RuleAlphaNumeric           RuleName = "alpha_numeric"
	RuleAlphaDash              RuleName = "alpha_dash"
	RuleNumeric                RuleName = "numeric"
	RuleInteger                RuleName = "integer"
	RuleDecimal                RuleName = "decimal"
	RuleIsNatural              RuleName = "is_natural"
	RuleIsNaturalNoZero        RuleName = "is_natural_no_zero"
	RuleValidIP                RuleName = "valid_ip"
	RuleValidBase64            RuleName = "valid_base64"
	RuleValidCreditCard        RuleName = "valid_credit_card"
	RuleIsFileType             RuleName = "is_file_type"
	RuleValidURL               RuleName = "valid_url"
	RuleGreaterThanDate        RuleName = "greater_than_date"
	RuleLessThanDate           RuleName = "less_than_date"
	RuleGreaterThanOrEqualDate RuleName = "greater_than_or_equal_date"
	RuleLessThanOrEqualDate    RuleName = "less_than_or_equal_date"
)

// Func 统一的规则函数签名
type Func func(ctx *EvalContext, field *Snapshot, param string) bool

// EvalContext 规则执行上下文
type EvalContext struct {
	source Source
	now    time.Time
}

// Lookup 按名称读取表单中的其它元素
func (c *EvalContext) Lookup(name string) (*Element, bool) {
	if c == nil || c.source == nil {
		return nil, false
	}
	return c.source.Lookup(name)
}

// Now 本次验证的当前时间（整次验证内保持不变）
func (c *EvalContext) Now() time.Time {
	if c == nil || c.now.IsZero() {
		return time.Now()
	}
	return c.now
}

var builtinRules = map[RuleName]Func{
	RuleRequired: func(_ *EvalContext, f *Snapshot, _ string) bool {
		if f.Kind.isCheckable() {
			return f.Checked
		}
		return f.Value != ""
	},
	RuleDefault: func(_ *EvalContext, f *Snapshot, param string) bool {
		return f.Value != param
	},
	RuleMatches: func(ctx *EvalContext, f *Snapshot, param string) bool {
		other, ok := ctx.Lookup(param)
		if !ok {
			return false
		}
		return f.Value == other.Value
	},
	RuleValidEmail: patternRule(emailRegex.MatchString),
	RuleValidEmails: func(_ *EvalContext, f *Snapshot, _ string) bool {
		for _, addr := range emailListSep.Split(f.Value, -1) {
			if !emailRegex.MatchString(addr) {
				return false
			}
		}
		return true
	},
	RuleMinLength:       lengthRule(func(n, want int) bool { return n >= want }),
	RuleMaxLength:       lengthRule(func(n, want int) bool { return n <= want }),
	RuleExactLength:     lengthRule(func(n, want int) bool { return n == want }),
	RuleGreaterThan:     numberRule(func(v, bound float64) bool { return v > bound }),
	RuleLessThan:        numberRule(func(v, bound float64) bool { return v < bound }),
	RuleAlpha:           patternRule(alphaRegex.MatchString),
	RuleAlphaNumeric:    patternRule(alphaNumericRegex.MatchString),
	RuleAlphaDash:       patternRule(alphaDashRegex.MatchString),
	RuleNumeric:         patternRule(numericRegex.MatchString),
	RuleInteger:         patternRule(integerRegex.MatchString),
	RuleDecimal:         patternRule(decimalRegex.MatchString),
	RuleIsNatural:       patternRule(naturalRegex.MatchString),
	RuleIsNaturalNoZero: patternRule(naturalNoZeroRegex.MatchString),
	RuleValidIP:         patternRule(ipRegex.MatchString),
	RuleValidBase64:     patternRule(base64Regex.MatchString),
	RuleValidURL:        patternRule(urlRegex.MatchString),
	RuleValidCreditCard: patternRule(luhnValid),
	RuleIsFileType: func(_ *EvalContext, f *Snapshot, param string) bool {
		if f.Kind != KindFile {
			return true
		}
		ext := f.Value[strings.LastIndex(f.Value, ".")+1:]
		for _, allowed := range strings.Split(param, ",") {
			if strings.EqualFold(ext, allowed) {
				return true
			}
		}
		return false
	},
	RuleGreaterThanDate: dateRule(func(a, b time.Time) bool { return a.After(b) }),
	RuleLessThanDate:    dateRule(func(a, b time.Time) bool { return a.Before(b) }),
	RuleGreaterThanOrEqualDate: dateRule(func(a, b time.Time) bool {
		return !a.Before(b)
	}),
	RuleLessThanOrEqualDate: dateRule(func(a, b time.Time) bool {
		return !a.After(b)
	}),
}

// Builtin 按名称查找内置规则
func Builtin(name string) (Func, bool) {
	fn, ok := builtinRules[RuleName(name)]
	return fn, ok
}

// BuiltinNames 所有内置规则名
func BuiltinNames() []RuleName {
	names := make([]RuleName, 0, len(builtinRules))
	for name := range builtinRules {
		names = append(names, name)
	}
	return names
}

func patternRule(match func(string) bool) Func {
	return func(_ *EvalContext, f *Snapshot, _ string) bool {
		return match(f.Value)
	}
}

// lengthRule 参数必须为非负整数，否则规则失败
func lengthRule(cmp func(n, want int) bool) Func {
	return func(_ *EvalContext, f *Snapshot, param string) bool {
		if !numericRegex.MatchString(param) {
			return false
		}
		want, err := strconv.Atoi(param)
		if err != nil {
			return false
		}
		return cmp(utf8.RuneCountInString(f.Value), want)
	}
}

// numberRule 字段值必须是十进制数
func numberRule(cmp func(v, bound float64) bool) Func {
	return func(_ *EvalContext, f *Snapshot, param string) bool {
		if !decimalRegex.MatchString(f.Value) {
			return false
		}
		v, err := strconv.ParseFloat(f.Value, 64)
		if err != nil {
			return false
		}
		bound, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return false
		}
		return cmp(v, bound)
	}
}

func dateRule(cmp func(entered, bound time.Time) bool) Func {
	return func(ctx *EvalContext, f *Snapshot, param string) bool {
		return compareDates(ctx, f.Value, param, cmp)
	}
}

// luhnValid 只接受数字、横线、空格，去掉非数字后做 Luhn 校验
func luhnValid(value string) bool {
	if !numericDashRegex.MatchString(value) {
		return false
	}
	digits := nonDigitRegex.ReplaceAllString(value, "")

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
