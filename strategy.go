// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"unsafe"
)

//go:generate stringer -type=Kind -trimprefix=Kind

type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindSequence
	KindComposite
)

// Strategy 某个类型专属的深拷贝过程，只有 scalar、sequence、composite 三种实现
type Strategy interface {
	Kind() Kind
	// Clone 深拷贝 v，v 的动态类型必须是该策略对应的类型（composite 同时接受 T 与 *T），否则 panic。
	// nil 输入返回同类型的 nil
	Clone(v any) any
	String() string

	sealed()
}

// fromAddr, toAddr 都不能为 nil，toAddr 指向的内存须为零值
type copyFunc func(fromAddr, toAddr unsafe.Pointer)

// 以 typ 为静态类型，用 copier 完成一次反射入口的拷贝
func cloneAny(typ reflect.Type, copier copyFunc, v any) any {
	toPtr := reflect.New(typ)
	copier(getValueAddr(reflect.ValueOf(v)), toPtr.UnsafePointer())
	return toPtr.Elem().Interface()
}
