// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"unsafe"
)

// Cloner 类型 T 实例化后的深拷贝器，并发调用安全
type Cloner[T any] struct {
	strategy Strategy
	copy     copyFunc
}

func (c *Cloner[T]) Clone(from T) (to T) {
	c.copy(unsafe.Pointer(&from), unsafe.Pointer(&to))
	return to
}

func (c *Cloner[T]) Strategy() Strategy {
	return c.strategy
}

// GetCloner 生成类型 T 的深拷贝器，类型不满足要求时返回生成期错误
func GetCloner[T any](r *Registry) (*Cloner[T], error) {
	strategy, copier, err := r.bind(typeFor[T]())
	if err != nil {
		return nil, err
	}
	return &Cloner[T]{strategy: strategy, copy: copier}, nil
}

// DeepCopy 深拷贝
func DeepCopy[T any](v T) (T, error) {
	return DeepCopyWithRegistry(defaultRegistry, v)
}

// GetDeepCopier 获取类型 T 的深拷贝函数，对比直接调用 DeepCopy 少了查缓存的步骤，性能会略微好一点
func GetDeepCopier[T any]() (func(T) T, error) {
	return GetDeepCopierWithRegistry[T](defaultRegistry)
}

// MustGetDeepCopier 同 GetDeepCopier，类型不支持深拷贝时 panic
func MustGetDeepCopier[T any]() func(T) T {
	return MustGetDeepCopierWithRegistry[T](defaultRegistry)
}

// ReflectClone 以反射的方式深拷贝
func ReflectClone(v reflect.Value) (reflect.Value, error) {
	return ReflectCloneWithRegistry(defaultRegistry, v)
}

func DeepCopyWithRegistry[T any](r *Registry, v T) (to T, err error) {
	c, err := GetCloner[T](r)
	if err != nil {
		return to, err
	}
	return c.Clone(v), nil
}

func GetDeepCopierWithRegistry[T any](r *Registry) (func(T) T, error) {
	c, err := GetCloner[T](r)
	if err != nil {
		return nil, err
	}
	return c.Clone, nil
}

func MustGetDeepCopierWithRegistry[T any](r *Registry) func(T) T {
	c, err := GetCloner[T](r)
	if err != nil {
		panic(err)
	}
	return c.Clone
}

func ReflectCloneWithRegistry(r *Registry, v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return v, nil
	}
	typ := v.Type()
	_, copier, err := r.bind(typ)
	if err != nil {
		return reflect.Value{}, err
	}
	toPtr := reflect.New(typ)
	copier(getValueAddr(v), toPtr.UnsafePointer())
	return toPtr.Elem(), nil
}
