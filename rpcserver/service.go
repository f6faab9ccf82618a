// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpcserver

import (
	"fmt"
	"reflect"

	"github.com/coredev/corecomm/tag"
)

// Service is a host-side callable invoked by the device during a running
// kernel via the RPC mechanism. Implementations are stored in the embedding
// map and resolved by service id; service id 0 never reaches Service.Call —
// it is the reserved builtin setattr, handled directly by ServeLoop.
type Service interface {
	Call(args []tag.Value, kwargs map[string]tag.Value) (tag.Value, error)
}

// ServiceFunc adapts a plain function to Service.
type ServiceFunc func(args []tag.Value, kwargs map[string]tag.Value) (tag.Value, error)

func (f ServiceFunc) Call(args []tag.Value, kwargs map[string]tag.Value) (tag.Value, error) {
	return f(args, kwargs)
}

// setAttrBuiltin implements service id 0, "(obj, attr, value) -> obj.attr =
// value". obj must be a pointer to a struct whose field named attr is both
// exported and settable; value is converted to the field's Go type where
// the two are compatible.
func setAttrBuiltin(args []tag.Value) error {
	if len(args) != 3 {
		return fmt.Errorf("rpcserver: setattr expects 3 arguments, got %d", len(args))
	}
	obj := args[0]
	attr := args[1]
	value := args[2]
	if obj.Kind != tag.KindObject {
		return fmt.Errorf("rpcserver: setattr target is not an object handle (tag %q)", obj.Kind)
	}
	if attr.Kind != tag.KindString {
		return fmt.Errorf("rpcserver: setattr attribute name is not a string (tag %q)", attr.Kind)
	}

	rv := reflect.ValueOf(obj.Object)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("rpcserver: setattr target must be a non-nil pointer, got %T", obj.Object)
	}
	field := rv.Elem().FieldByName(attr.Str)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("rpcserver: %T has no settable field %q", obj.Object, attr.Str)
	}
	return assignValue(field, value)
}

func assignValue(field reflect.Value, value tag.Value) error {
	switch value.Kind {
	case tag.KindNone:
		field.Set(reflect.Zero(field.Type()))
		return nil
	case tag.KindBool:
		if field.Kind() != reflect.Bool {
			return fmt.Errorf("rpcserver: cannot assign bool to field of type %s", field.Type())
		}
		field.SetBool(value.Bool)
		return nil
	case tag.KindInt32, tag.KindInt64:
		v := value.Int64
		if value.Kind == tag.KindInt32 {
			v = int64(value.Int32)
		}
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			field.SetInt(v)
			return nil
		case reflect.Float32, reflect.Float64:
			field.SetFloat(float64(v))
			return nil
		}
		return fmt.Errorf("rpcserver: cannot assign integer to field of type %s", field.Type())
	case tag.KindFloat:
		if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
			return fmt.Errorf("rpcserver: cannot assign float to field of type %s", field.Type())
		}
		field.SetFloat(value.Float64)
		return nil
	case tag.KindString:
		if field.Kind() != reflect.String {
			return fmt.Errorf("rpcserver: cannot assign string to field of type %s", field.Type())
		}
		field.SetString(value.Str)
		return nil
	default:
		return fmt.Errorf("rpcserver: setattr does not support value tag %q", value.Kind)
	}
}
