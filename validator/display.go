package validator

import "sync"

// errorSlotSuffix 字段错误展示位的后缀 (<id>-error)
const errorSlotSuffix = "-error"

// Display 错误消息展示面（宿主 UI 绑定层实现）
type Display interface {
	Show(slot, message string)
	Clear(slot string)
}

// ErrorSlot 字段错误展示位
func ErrorSlot(id string) string {
	return id + errorSlotSuffix
}

// DisplayCallback 将每个错误的首条消息写入 <id>-error 展示位
func DisplayCallback(d Display) Callback {
	return func(errs Errors, _ *Context) {
		for _, err := range errs {
			d.Show(ErrorSlot(err.ID), err.Message)
		}
	}
}

// MessageBoard 内存展示面，并发安全
type MessageBoard struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMessageBoard 创建内存展示面
func NewMessageBoard() *MessageBoard {
	return &MessageBoard{slots: make(map[string]string)}
}

// Show 实现 Display
func (b *MessageBoard) Show(slot, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[slot] = message
}

// Clear 实现 Display
func (b *MessageBoard) Clear(slot string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.slots, slot)
}

// Message 读取展示位消息
func (b *MessageBoard) Message(slot string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.slots[slot]
	return msg, ok
}

// Len 当前展示的消息数
func (b *MessageBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.slots)
}
