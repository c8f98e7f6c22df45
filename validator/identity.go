package validator

import (
	"github.com/google/uuid"
)

// identityNamespace UUIDv5 命名空间
var identityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/aisgo/ais-validate/field"))

// identities 单次验证内的字段标识分配
// 元素自带 ID 时直接使用；否则按 "<form>/<field>" 生成确定性 UUIDv5，
// 只在本次验证内缓存，不回写到元素上
type identities struct {
	form string
	ids  map[string]string
}

func newIdentities(form string) *identities {
	return &identities{form: form, ids: make(map[string]string)}
}

// assign 返回字段的稳定标识
func (i *identities) assign(name string, el *Element) string {
	if el != nil && el.ID != "" {
		return el.ID
	}
	if id, ok := i.ids[name]; ok {
		return id
	}
	id := FieldID(i.form, name)
	i.ids[name] = id
	return id
}

// FieldID 无 ID 元素的确定性标识
func FieldID(form, name string) string {
	return uuid.NewSHA1(identityNamespace, []byte(form+"/"+name)).String()
}
