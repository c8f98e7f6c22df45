package validator

import (
	"fmt"
	"strings"
)

/* ========================================================================
 * Validator Types - 验证器类型定义
 * ========================================================================
 * 职责: 定义规则分隔符、输入类型、字段快照与验证错误
 * ======================================================================== */

const (
	// ruleSeparator 规则分隔符，用于分隔多个规则
	ruleSeparator = "|"
	// messageKeySep 字段级消息键分隔符 ("field.rule")
	messageKeySep = "."
	// callbackPrefix 自定义回调规则前缀 (callback_xxx)
	callbackPrefix = "callback_"
	// negateMarker 规则取反标记
	negateMarker = "!"
)

// InputKind 输入控件类型
type InputKind string

const (
	KindText     InputKind = "text"
	KindPassword InputKind = "password"
	KindEmail    InputKind = "email"
	KindHidden   InputKind = "hidden"
	KindTextarea InputKind = "textarea"
	KindSelect   InputKind = "select"
	KindCheckbox InputKind = "checkbox"
	KindRadio    InputKind = "radio"
	KindFile     InputKind = "file"
)

// isCheckable checkbox / radio 以 checked 状态判断是否填写
func (k InputKind) isCheckable() bool {
	return k == KindCheckbox || k == KindRadio
}

// Element 字段的实时值来源（由宿主绑定层提供）
type Element struct {
	ID      string    `json:"id,omitempty"`
	Value   string    `json:"value"`
	Checked bool      `json:"checked,omitempty"`
	Kind    InputKind `json:"kind,omitempty"`
}

// Snapshot 单次验证中字段的状态快照
// 每次验证重新计算，不跨验证保留
type Snapshot struct {
	ID      string
	Name    string
	Display string
	Rules   string
	Value   string
	Checked bool
	Kind    InputKind
	Element *Element
}

// empty 值为空
func (s *Snapshot) empty() bool {
	return s.Value == ""
}

// ValidationError 单个字段的验证错误
// 同一字段多条规则失败时合并为一条记录，Messages 累积所有消息
type ValidationError struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Display  string   `json:"display"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
	Element  *Element `json:"-"`
}

// Errors 一次验证的错误列表，按字段出现顺序排列
type Errors []*ValidationError

// Error 实现 error 接口
func (e Errors) Error() string {
	var sb strings.Builder
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("%s: %s; ", err.Name, strings.Join(err.Messages, ", ")))
	}
	return sb.String()
}

// HasErrors 检查是否有验证错误
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Get 按字段名获取错误
func (e Errors) Get(name string) *ValidationError {
	for _, err := range e {
		if err.Name == name {
			return err
		}
	}
	return nil
}

// ByField 字段名 -> 错误消息列表
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, err := range e {
		out[err.Name] = append(out[err.Name], err.Messages...)
	}
	return out
}

// add 记录一次规则失败，按字段 ID 合并
func (e Errors) add(field *Snapshot, rule, message string) Errors {
	for _, existing := range e {
		if existing.ID == field.ID {
			existing.Messages = append(existing.Messages, message)
			return e
		}
	}
	return append(e, &ValidationError{
		ID:       field.ID,
		Name:     field.Name,
		Display:  field.Display,
		Rule:     rule,
		Message:  message,
		Messages: []string{message},
		Element:  field.Element,
	})
}
