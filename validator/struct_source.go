package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

/* ========================================================================
 * Struct Source - 结构体值来源
 * ========================================================================
 * 职责: 通过 form 标签从结构体读取字段值，类型信息缓存减少反射开销
 * 标签格式:
 *   Email  string `form:"email"`
 *   Terms  bool   `form:"terms,checkbox"`
 *   Avatar string `form:"avatar,file"`
 * 嵌套结构体字段名以 "." 连接: address.city
 * ======================================================================== */

const tagForm = "form"

var timeType = reflect.TypeOf(time.Time{})

// fieldInfo 字段信息
type fieldInfo struct {
	index    int       // 结构体字段下标
	name     string    // 表单字段名
	kind     InputKind // 输入类型
	isStruct bool      // 是否为结构体
	isPtr    bool      // 是否为指针类型
}

// typeCache 类型缓存
type typeCache struct {
	mu    sync.RWMutex
	cache map[reflect.Type][]fieldInfo
}

func newTypeCache() *typeCache {
	return &typeCache{
		cache: make(map[reflect.Type][]fieldInfo),
	}
}

// structTypes 包级共享的类型缓存（只缓存不可变的类型信息）
var structTypes = newTypeCache()

// getFieldsInfo 获取类型的字段信息（带缓存）
func (tc *typeCache) getFieldsInfo(t reflect.Type) []fieldInfo {
	tc.mu.RLock()
	info, exists := tc.cache[t]
	tc.mu.RUnlock()
	if exists {
		return info
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	// 双重检查
	if info, exists := tc.cache[t]; exists {
		return info
	}

	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			// 跳过未导出字段
			continue
		}
		tag := field.Tag.Get(tagForm)
		if tag == "-" {
			continue
		}

		fieldType := field.Type
		isPtr := fieldType.Kind() == reflect.Ptr
		if isPtr {
			fieldType = fieldType.Elem()
		}

		name, opt, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		kind := InputKind(opt)
		if kind == "" {
			kind = KindText
			if fieldType.Kind() == reflect.Bool {
				kind = KindCheckbox
			}
		}

		fields = append(fields, fieldInfo{
			index:    i,
			name:     name,
			kind:     kind,
			isStruct: fieldType.Kind() == reflect.Struct && fieldType != timeType,
			isPtr:    isPtr,
		})
	}

	tc.cache[t] = fields
	return fields
}

// StructSource 从结构体读取字段值
type StructSource struct {
	elements Elements
}

// NewStructSource 创建结构体值来源，s 可以是结构体或结构体指针
func NewStructSource(s any) *StructSource {
	src := &StructSource{elements: make(Elements)}
	if s == nil {
		return src
	}
	src.collect(reflect.ValueOf(s), "", make(map[uintptr]struct{}))
	return src
}

// Lookup 实现 Source
func (s *StructSource) Lookup(name string) (*Element, bool) {
	return s.elements.Lookup(name)
}

// collect 递归读取字段，visiting 记录当前路径上的指针，遇到环时停止
func (s *StructSource) collect(value reflect.Value, prefix string, visiting map[uintptr]struct{}) {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return
		}
		ptr := value.Pointer()
		if _, seen := visiting[ptr]; seen {
			return
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}

	for _, info := range structTypes.getFieldsInfo(value.Type()) {
		fieldValue := value.Field(info.index)
		fullName := info.name
		if prefix != "" {
			fullName = prefix + "." + info.name
		}

		if info.isStruct {
			s.collect(fieldValue, fullName, visiting)
			continue
		}

		if info.isPtr {
			if fieldValue.IsNil() {
				// nil 指针视为空值，字段仍然存在
				s.elements[fullName] = &Element{Kind: info.kind}
				continue
			}
			fieldValue = fieldValue.Elem()
		}
		s.elements[fullName] = elementOf(fieldValue, info.kind)
	}
}

// elementOf 将反射值转换为元素
func elementOf(v reflect.Value, kind InputKind) *Element {
	el := &Element{Kind: kind}
	if v.Type() == timeType {
		if t := v.Interface().(time.Time); !t.IsZero() {
			el.Value = t.Format(time.DateOnly)
		}
		return el
	}
	switch v.Kind() {
	case reflect.String:
		el.Value = v.String()
	case reflect.Bool:
		el.Checked = v.Bool()
		if el.Checked {
			el.Value = "on"
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		el.Value = strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		el.Value = strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		el.Value = strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.String {
			parts := make([]string, v.Len())
			for i := range parts {
				parts[i] = v.Index(i).String()
			}
			el.Value = strings.Join(parts, ",")
			break
		}
		el.Value = fmt.Sprint(v.Interface())
	default:
		el.Value = fmt.Sprint(v.Interface())
	}
	return el
}
