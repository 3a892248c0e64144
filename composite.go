// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"sync/atomic"
	"unsafe"
)

const (
	stateBuilding = uint32(iota) // 已注册，字段尚未解析完
	stateResolved                // 字段已解析，尚未编译
	stateReady                   // 已编译，只读
)

type fieldPlan struct {
	index    int
	name     string
	offset   uintptr
	size     uintptr
	strategy Strategy
	copy     copyFunc
	flat     bool
}

// 编译后的一步拷贝，偏移相对于结构体起始地址
type copyStep struct {
	offset uintptr
	copy   copyFunc
}

// compositeStrategy 结构体的拷贝策略，按字段计划逐个拷贝
type compositeStrategy struct {
	typ      reflect.Type
	ptrType  reflect.Type
	fields   []fieldPlan
	state    atomic.Uint32
	compiled copyFunc
	steps    int
}

func newCompositeStrategy(typ reflect.Type) *compositeStrategy {
	return &compositeStrategy{
		typ:     typ,
		ptrType: reflect.PointerTo(typ),
	}
}

func (s *compositeStrategy) Kind() Kind {
	return KindComposite
}

func (s *compositeStrategy) Clone(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v) {
	case s.typ:
		return cloneAny(s.typ, s.copyInto, v)
	case s.ptrType:
		return cloneAny(s.ptrType, s.copyRef, v)
	default:
		panic(mismatchedValueErr(s, v))
	}
}

func (s *compositeStrategy) String() string {
	return "composite<" + s.typ.String() + ">"
}

func (s *compositeStrategy) sealed() {}

func (s *compositeStrategy) Type() reflect.Type {
	return s.typ
}

// Fields 按声明顺序返回参与拷贝的字段名
func (s *compositeStrategy) Fields() []string {
	names := make([]string, len(s.fields))
	for i := range s.fields {
		names[i] = s.fields[i].name
	}
	return names
}

func (s *compositeStrategy) ready() bool {
	return s.state.Load() == stateReady
}

func (s *compositeStrategy) attach(plan fieldPlan) {
	s.fields = append(s.fields, plan)
}

// 拷贝 fromAddr 指向的结构体，递归类型在编译前就会被引用，故每次调用时才读取 compiled
func (s *compositeStrategy) copyInto(fromAddr, toAddr unsafe.Pointer) {
	s.compiled(fromAddr, toAddr)
}

// 拷贝 *T，nil 保持为 nil
func (s *compositeStrategy) copyRef(fromAddr, toAddr unsafe.Pointer) {
	from := *(*unsafe.Pointer)(fromAddr)
	if from == nil {
		*(*unsafe.Pointer)(toAddr) = nil
		return
	}
	to := newObject(s.typ)
	s.compiled(from, to)
	*(*unsafe.Pointer)(toAddr) = to
}

// routine 返回以 T（byRef 为 false）或 *T 为静态类型的拷贝函数，已编译时直接绑定编译结果
func (s *compositeStrategy) routine(byRef bool) copyFunc {
	if byRef {
		return s.copyRef
	}
	if s.ready() {
		return s.compiled
	}
	return s.copyInto
}

// compile 把字段计划固化为一个拷贝函数，之后不再变化。
// 全部字段都是 scalar 时整体拷贝；否则相邻的无指针 scalar 字段合并为一次字节拷贝
func (s *compositeStrategy) compile() {
	if s.allScalar() {
		s.compiled = typedMove(s.typ)
		s.steps = 1
		s.state.Store(stateReady)
		return
	}
	steps := make([]copyStep, 0, len(s.fields))
	for i := 0; i < len(s.fields); {
		field := &s.fields[i]
		if !field.flat {
			steps = append(steps, copyStep{offset: field.offset, copy: field.copy})
			i++
			continue
		}
		j := i + 1
		for j < len(s.fields) && s.fields[j].flat && s.fields[j].index == s.fields[j-1].index+1 {
			j++
		}
		last := &s.fields[j-1]
		steps = append(steps, copyStep{
			offset: field.offset,
			copy:   bytesMove(last.offset + last.size - field.offset),
		})
		i = j
	}
	s.steps = len(steps)
	switch len(steps) {
	case 0:
		s.compiled = func(fromAddr, toAddr unsafe.Pointer) {}
	case 1:
		step := steps[0]
		s.compiled = func(fromAddr, toAddr unsafe.Pointer) {
			step.copy(unsafe.Add(fromAddr, step.offset), unsafe.Add(toAddr, step.offset))
		}
	default:
		s.compiled = func(fromAddr, toAddr unsafe.Pointer) {
			for i := range steps {
				steps[i].copy(unsafe.Add(fromAddr, steps[i].offset), unsafe.Add(toAddr, steps[i].offset))
			}
		}
	}
	s.state.Store(stateReady)
}

func (s *compositeStrategy) allScalar() bool {
	if len(s.fields) != s.typ.NumField() {
		return false
	}
	for i := range s.fields {
		if s.fields[i].strategy.Kind() != KindScalar {
			return false
		}
	}
	return true
}
