package validator

import (
	"net/url"
)

/* ========================================================================
 * Value Sources - 字段值来源
 * ========================================================================
 * 职责: 抽象宿主绑定层，按字段名定位实时值
 * 实现:
 *   - Elements:     显式的元素表
 *   - MapSource:    map[string]string
 *   - Values:       url.Values（表单提交）
 *   - StructSource: 结构体 form 标签（反射，类型信息缓存）
 * ======================================================================== */

// Source 字段值来源
// 找不到的字段在本次验证中被整体跳过
type Source interface {
	Lookup(name string) (*Element, bool)
}

// SourceFunc 函数适配器
type SourceFunc func(name string) (*Element, bool)

// Lookup 实现 Source
func (f SourceFunc) Lookup(name string) (*Element, bool) {
	return f(name)
}

// Elements 显式元素表
type Elements map[string]*Element

// Lookup 实现 Source
func (e Elements) Lookup(name string) (*Element, bool) {
	el, ok := e[name]
	if !ok || el == nil {
		return nil, false
	}
	return el, true
}

// MapSource 纯文本值
type MapSource map[string]string

// Lookup 实现 Source
func (m MapSource) Lookup(name string) (*Element, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	return &Element{Value: v, Kind: KindText}, true
}

// Values 表单提交值
// 未勾选的 checkbox / radio 不会出现在提交中，需要在 Kinds 中声明才能被定位
type Values struct {
	Form  url.Values
	Kinds map[string]InputKind
}

// Lookup 实现 Source
func (v Values) Lookup(name string) (*Element, bool) {
	kind, declared := v.Kinds[name]
	if !declared {
		kind = KindText
	}

	vals, ok := v.Form[name]
	if !ok {
		if declared && kind.isCheckable() {
			return &Element{Kind: kind}, true
		}
		return nil, false
	}

	el := &Element{Kind: kind}
	for _, val := range vals {
		if val != "" {
			el.Value = val
			break
		}
	}
	if kind.isCheckable() {
		el.Checked = len(vals) > 0
	}
	return el, true
}
