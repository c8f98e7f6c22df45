package validator

import (
	"maps"
	"sync"
)

/* ========================================================================
 * Registry - 规则注册表
 * ========================================================================
 * 职责: 管理可扩展的回调规则 (callback_xxx) 与 depends 条件
 * 语义: 按名称注册，后注册者覆盖先注册者
 * 内置规则为封闭枚举 (builtinRules)，不可修改
 * 每个 Engine 拥有独立的注册表，无全局状态
 * ======================================================================== */

// Registry 回调与条件注册表
type Registry struct {
	mu           sync.RWMutex
	callbacks    map[string]CallbackFunc
	conditionals map[string]ConditionalFunc
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		callbacks:    make(map[string]CallbackFunc),
		conditionals: make(map[string]ConditionalFunc),
	}
}

// RegisterCallback 注册回调规则，返回是否注册成功
func (r *Registry) RegisterCallback(name string, fn CallbackFunc) bool {
	if name == "" || fn == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[name] = fn
	return true
}

// RegisterConditional 注册 depends 条件，返回是否注册成功
func (r *Registry) RegisterConditional(name string, fn ConditionalFunc) bool {
	if name == "" || fn == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditionals[name] = fn
	return true
}

// Callback 查找回调规则
func (r *Registry) Callback(name string) (CallbackFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callbacks[name]
	return fn, ok
}

// Conditional 查找 depends 条件
func (r *Registry) Conditional(name string) (ConditionalFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.conditionals[name]
	return fn, ok
}

// snapshot 复制当前注册表，供单次验证无锁使用
func (r *Registry) snapshot() (map[string]CallbackFunc, map[string]ConditionalFunc) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.callbacks), maps.Clone(r.conditionals)
}
