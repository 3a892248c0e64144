// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cloner 按类型的形状生成专用的深拷贝函数：每个结构体类型只分析、编译一次，
// 之后的拷贝不再做任何类型检查。
package cloner

import (
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTagKey = "clone"

type Registry struct {
	composites map[reflect.Type]*compositeStrategy
	scalars    map[reflect.Type]*scalarStrategy
	mu         sync.RWMutex // 读多写少的场景，sync.RWMutex的效率比sync.Map更高
	frozen     bool

	unexported bool   // 拷贝未导出字段
	tagKey     string // 结构体标签名，"-" 跳过字段，"shallow" 浅拷贝字段
	logger     *zap.Logger
}

func (r *Registry) CloneUnexported() bool {
	return r.unexported
}

func (r *Registry) TagKey() string {
	return r.tagKey
}

// Len 已注册的 composite 策略数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.composites)
}

type Option func(r *Registry)

// NewRegistry 创建新的注册表
func NewRegistry(options ...Option) *Registry {
	registry := &Registry{
		composites: make(map[reflect.Type]*compositeStrategy),
		scalars:    make(map[reflect.Type]*scalarStrategy),
		tagKey:     defaultTagKey,
		logger:     zap.NewNop(),
	}
	for _, option := range defaultOptions {
		option(registry)
	}
	for _, option := range options {
		option(registry)
	}
	registry.frozen = true
	return registry
}

var defaultRegistry = NewRegistry()

// SetDefaultRegistry ！！慎用！！设置默认注册表，可以改变默认行为
func SetDefaultRegistry(r *Registry) {
	defaultRegistry = r
}

// WithScalar 把类型 T 视为不可变值，拷贝时直接赋值，如定点小数、time.Time
func WithScalar[T any]() Option {
	typ := typeFor[T]()
	return func(r *Registry) {
		if r.frozen {
			return
		}
		r.scalars[typ] = newGenericScalar[T]()
	}
}

// WithUnexportedFields 拷贝结构体的未导出字段
func WithUnexportedFields() Option {
	return func(r *Registry) {
		if r.frozen {
			return
		}
		r.unexported = true
	}
}

// WithTagKey 修改读取字段选项的结构体标签名，默认为 clone
func WithTagKey(key string) Option {
	return func(r *Registry) {
		if r.frozen || key == "" {
			return
		}
		r.tagKey = key
	}
}

// WithLogger 生成策略时输出 debug 日志
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if r.frozen || logger == nil {
			return
		}
		r.logger = logger
	}
}

var defaultOptions = []Option{
	WithScalar[time.Time](),
}
