// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Resolve 生成类型 typ 的拷贝策略，可重复调用，同一类型始终返回同一个策略。
// *T 与 T 共用 T 的 composite 策略
func (r *Registry) Resolve(typ reflect.Type) (Strategy, error) {
	strategy, _, err := r.bind(typ)
	return strategy, err
}

// bind 返回策略以及以 typ 为静态类型的拷贝函数
func (r *Registry) bind(typ reflect.Type) (Strategy, copyFunc, error) {
	if typ == nil {
		return nil, nil, ErrNilType
	}
	if s, byRef, ok := r.lookup(typ); ok {
		return s, s.routine(byRef), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g := generator{r: r}
	strategy, copier, err := g.resolve(typ)
	if err != nil {
		g.rollback(err)
		return nil, nil, err
	}
	return strategy, copier, nil
}

// 读锁下查已完成的 composite，生成过程持有写锁，这里不会读到未完成的策略
func (r *Registry) lookup(typ reflect.Type) (*compositeStrategy, bool, bool) {
	byRef := false
	if typ.Kind() == reflect.Pointer {
		typ, byRef = typ.Elem(), true
	}
	if typ.Kind() != reflect.Struct {
		return nil, false, false
	}
	r.mu.RLock()
	s, ok := r.composites[typ]
	r.mu.RUnlock()
	return s, byRef, ok
}

// generator 一次生成过程，调用方需持有写锁
type generator struct {
	r     *Registry
	added []reflect.Type
}

func (g *generator) resolve(typ reflect.Type) (Strategy, copyFunc, error) {
	if s := g.r.scalarFor(typ); s != nil {
		return s, s.copy, nil
	}
	switch typ.Kind() {
	case reflect.Slice:
		elem, elemCopy, err := g.resolve(typ.Elem())
		if err != nil {
			return nil, nil, err
		}
		s := newSequenceStrategy(typ, elem, elemCopy)
		return s, s.copy, nil
	case reflect.Array:
		return nil, nil, shapeErr(ErrUnsupportedCollectionShape, typ)
	case reflect.Struct:
		s, err := g.composite(typ)
		if err != nil {
			return nil, nil, err
		}
		return s, s.routine(false), nil
	case reflect.Pointer:
		elemType := typ.Elem()
		if elemType.Kind() != reflect.Struct || g.r.isScalar(elemType) {
			return nil, nil, shapeErr(ErrUnsupportedFieldType, typ)
		}
		s, err := g.composite(elemType)
		if err != nil {
			return nil, nil, err
		}
		return s, s.routine(true), nil
	case reflect.Interface:
		return nil, nil, shapeErr(ErrMissingConstructor, typ)
	default:
		return nil, nil, shapeErr(ErrUnsupportedFieldType, typ)
	}
}

// composite 先注册再解析字段，递归引用自身的字段会拿到这个尚未完成的策略
func (g *generator) composite(typ reflect.Type) (*compositeStrategy, error) {
	if s, ok := g.r.composites[typ]; ok {
		return s, nil
	}
	s := newCompositeStrategy(typ)
	g.r.composites[typ] = s
	g.added = append(g.added, typ)

	n := typ.NumField()
	for i := 0; i < n; i++ {
		field := typ.Field(i)
		mode := g.r.fieldMode(&field)
		if mode == fieldSkip {
			continue
		}
		plan := fieldPlan{
			index:  i,
			name:   field.Name,
			offset: field.Offset,
			size:   field.Type.Size(),
		}
		if mode == fieldShallow {
			shallow := newTypedScalar(field.Type)
			plan.strategy, plan.copy, plan.flat = shallow, shallow.copy, shallow.flat
			s.attach(plan)
			continue
		}
		strategy, copier, err := g.resolve(field.Type)
		if err != nil {
			if se, ok := err.(*ShapeError); ok && se.Owner == nil {
				se.Owner, se.Field = typ, field.Name
				return nil, se
			}
			return nil, errors.Wrapf(err, "resolve field <%s.%s>", typ, field.Name)
		}
		plan.strategy, plan.copy = strategy, copier
		if scalar, ok := strategy.(*scalarStrategy); ok {
			plan.flat = scalar.flat
		}
		s.attach(plan)
	}
	s.state.Store(stateResolved)
	s.compile()
	g.r.logger.Debug("composite strategy generated",
		zap.Stringer("type", typ),
		zap.Int("fields", len(s.fields)),
		zap.Int("steps", s.steps),
	)
	return s, nil
}

// rollback 删除本次生成注册的全部策略，失败后不留下任何可用的半成品
func (g *generator) rollback(err error) {
	for _, typ := range g.added {
		delete(g.r.composites, typ)
	}
	g.r.logger.Debug("strategy generation failed",
		zap.Int("discarded", len(g.added)),
		zap.Error(err),
	)
	g.added = nil
}

type fieldMode uint8

const (
	fieldDeep fieldMode = iota
	fieldShallow
	fieldSkip
)

func (r *Registry) fieldMode(field *reflect.StructField) fieldMode {
	tag, _, _ := strings.Cut(field.Tag.Get(r.tagKey), ",")
	if tag == "-" {
		return fieldSkip
	}
	if !field.IsExported() && !r.unexported {
		return fieldSkip
	}
	if tag == "shallow" {
		return fieldShallow
	}
	return fieldDeep
}
