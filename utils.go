// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"unsafe"
)

func typeFor[T any]() reflect.Type {
	var v T
	if t := reflect.TypeOf(v); t != nil {
		return t // optimize for T being a non-interface kind
	}
	return reflect.TypeOf((*T)(nil)).Elem() // only for an interface kind
}

// 与 runtime 中切片的内存布局一致
type slice struct {
	data unsafe.Pointer
	len  int
	cap  int
}

func offset(data unsafe.Pointer, idx int, elemSize uintptr) unsafe.Pointer {
	return unsafe.Add(data, uintptr(idx)*elemSize)
}

func newObject(typ reflect.Type) unsafe.Pointer {
	return reflect.New(typ).UnsafePointer()
}

// 返回 len == cap == n 的新切片，n 为 0 时 data 也不为 nil
func makeSlice(sliceType reflect.Type, n int) (reflect.Value, slice) {
	v := reflect.MakeSlice(sliceType, n, n)
	return v, slice{data: v.UnsafePointer(), len: n, cap: n}
}

func getValueAddr(v reflect.Value) unsafe.Pointer {
	if v.CanAddr() {
		return v.Addr().UnsafePointer()
	}
	copiedPtr := reflect.New(v.Type())
	copiedPtr.Elem().Set(v)
	return copiedPtr.UnsafePointer()
}

// hasPointers 判断该类型的内存里是否含有 GC 需要追踪的指针。
// 不含指针的内存可以按字节拷贝，否则必须走带写屏障的拷贝
func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		n := typ.NumField()
		for i := 0; i < n; i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func moveOf[T any]() copyFunc {
	return func(fromAddr, toAddr unsafe.Pointer) {
		*(*T)(toAddr) = *(*T)(fromAddr)
	}
}

func bytesMove(size uintptr) copyFunc {
	if size == 0 {
		return func(fromAddr, toAddr unsafe.Pointer) {}
	}
	return func(fromAddr, toAddr unsafe.Pointer) {
		copy(unsafe.Slice((*byte)(toAddr), size), unsafe.Slice((*byte)(fromAddr), size))
	}
}

// typedMove 整体拷贝一个类型为 typ 的值，含指针时经由 reflect 完成以保留写屏障
func typedMove(typ reflect.Type) copyFunc {
	if !hasPointers(typ) {
		return bytesMove(typ.Size())
	}
	return func(fromAddr, toAddr unsafe.Pointer) {
		reflect.NewAt(typ, toAddr).Elem().Set(reflect.NewAt(typ, fromAddr).Elem())
	}
}
