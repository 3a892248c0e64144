// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"unsafe"
)

// sequenceStrategy 拷贝切片：按原长度分配新切片，逐个元素用 elemCopy 拷贝
type sequenceStrategy struct {
	typ      reflect.Type
	elem     Strategy
	elemCopy copyFunc
	elemSize uintptr
	elemFlat bool // 元素为 scalar，整段用 reflect.Copy
}

func newSequenceStrategy(typ reflect.Type, elem Strategy, elemCopy copyFunc) *sequenceStrategy {
	_, isScalar := elem.(*scalarStrategy)
	return &sequenceStrategy{
		typ:      typ,
		elem:     elem,
		elemCopy: elemCopy,
		elemSize: typ.Elem().Size(),
		elemFlat: isScalar,
	}
}

func (s *sequenceStrategy) Kind() Kind {
	return KindSequence
}

func (s *sequenceStrategy) Clone(v any) any {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v) != s.typ {
		panic(mismatchedValueErr(s, v))
	}
	return cloneAny(s.typ, s.copy, v)
}

func (s *sequenceStrategy) String() string {
	return "sequence<" + s.typ.String() + ">"
}

func (s *sequenceStrategy) sealed() {}

// Elem 元素的拷贝策略
func (s *sequenceStrategy) Elem() Strategy {
	return s.elem
}

func (s *sequenceStrategy) copy(fromAddr, toAddr unsafe.Pointer) {
	from := *(*slice)(fromAddr)
	if from.data == nil {
		*(*slice)(toAddr) = slice{}
		return
	}
	toValue, to := makeSlice(s.typ, from.len)
	if s.elemFlat {
		reflect.Copy(toValue, reflect.NewAt(s.typ, fromAddr).Elem())
	} else {
		for i := 0; i < from.len; i++ {
			s.elemCopy(offset(from.data, i, s.elemSize), offset(to.data, i, s.elemSize))
		}
	}
	*(*slice)(toAddr) = to
}
