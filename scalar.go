// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
)

// scalarStrategy 不可变值类型，拷贝即赋值
type scalarStrategy struct {
	name string
	copy copyFunc
	flat bool // 不含指针，可与相邻字段合并为一次字节拷贝
}

func (s *scalarStrategy) Kind() Kind {
	return KindScalar
}

func (s *scalarStrategy) Clone(v any) any {
	return v
}

func (s *scalarStrategy) String() string {
	return "scalar<" + s.name + ">"
}

func (s *scalarStrategy) sealed() {}

// 按 kind 共享的无状态策略，同 kind 的具名类型内存布局相同，可直接复用
var kindScalars [reflect.UnsafePointer + 1]*scalarStrategy

func registerKindScalar[T any]() {
	typ := typeFor[T]()
	kindScalars[typ.Kind()] = &scalarStrategy{
		name: typ.Kind().String(),
		copy: moveOf[T](),
		flat: !hasPointers(typ),
	}
}

func init() {
	registerKindScalar[bool]()
	registerKindScalar[int]()
	registerKindScalar[int8]()
	registerKindScalar[int16]()
	registerKindScalar[int32]()
	registerKindScalar[int64]()
	registerKindScalar[uint]()
	registerKindScalar[uint8]()
	registerKindScalar[uint16]()
	registerKindScalar[uint32]()
	registerKindScalar[uint64]()
	registerKindScalar[uintptr]()
	registerKindScalar[float32]()
	registerKindScalar[float64]()
	registerKindScalar[complex64]()
	registerKindScalar[complex128]()
	registerKindScalar[string]()
}

func newTypedScalar(typ reflect.Type) *scalarStrategy {
	return &scalarStrategy{
		name: typ.String(),
		copy: typedMove(typ),
		flat: !hasPointers(typ),
	}
}

func newGenericScalar[T any]() *scalarStrategy {
	typ := typeFor[T]()
	return &scalarStrategy{
		name: typ.String(),
		copy: moveOf[T](),
		flat: !hasPointers(typ),
	}
}

func (r *Registry) isScalar(typ reflect.Type) bool {
	if _, ok := r.scalars[typ]; ok {
		return true
	}
	if kindScalars[typ.Kind()] != nil {
		return true
	}
	return typ.Kind() == reflect.Array && r.isScalar(typ.Elem())
}

// scalarFor 返回 typ 的 scalar 策略，typ 不是 scalar 时返回 nil。
// 注册的类型优先于 kind 表，元素为 scalar 的数组整体按值拷贝
func (r *Registry) scalarFor(typ reflect.Type) *scalarStrategy {
	if s, ok := r.scalars[typ]; ok {
		return s
	}
	if s := kindScalars[typ.Kind()]; s != nil {
		return s
	}
	if typ.Kind() == reflect.Array && r.isScalar(typ.Elem()) {
		return newTypedScalar(typ)
	}
	return nil
}
