// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"reflect"
)

type strErr string

func (e strErr) Error() string {
	return string(e)
}

const ErrNilType = strErr("type is <nil>")
const ErrMissingConstructor = strErr("missing constructor")
const ErrUnsupportedCollectionShape = strErr("unsupported collection shape")
const ErrUnsupportedFieldType = strErr("unsupported field type")

// ShapeError 生成期的类型形状错误，Kind 为上面的哨兵错误之一。
// Owner 为空时表示出错的是根类型本身
type ShapeError struct {
	Kind  error
	Type  reflect.Type
	Owner reflect.Type
	Field string
}

func (e *ShapeError) Error() string {
	if e.Owner != nil {
		return e.Kind.Error() + ": field <" + e.Owner.String() + "." + e.Field + "> has type <" + getTypeString(e.Type) + ">"
	}
	return e.Kind.Error() + ": type <" + getTypeString(e.Type) + ">"
}

func (e *ShapeError) Unwrap() error {
	return e.Kind
}

func shapeErr(kind error, typ reflect.Type) *ShapeError {
	return &ShapeError{Kind: kind, Type: typ}
}

func getTypeString(typ reflect.Type) string {
	if typ == nil {
		return "nil"
	}
	return typ.String()
}

func mismatchedValueErr(s Strategy, v any) error {
	return strErr("can't clone value of type <" + getTypeString(reflect.TypeOf(v)) + "> with " + s.String())
}
