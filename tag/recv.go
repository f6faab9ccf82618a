// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tag

import "github.com/coredev/corecomm/wire"

// EmbeddingMap is the subset of the embedding map's contract this codec
// needs. It is declared here, not imported from package embedmap, so that
// callers can supply any object registry that satisfies it (including a
// test double) without this package depending on a concrete
// implementation.
type EmbeddingMap interface {
	StoreObject(obj any) (int32, error)
	RetrieveObject(id int32) (any, error)
}

// Receive reads one tagged value from r, dispatching on its tag byte per
// the value grammar. The '\0' sentinel is returned as a Value of KindEnd;
// callers building an argument list (see package rpcserver) check for it
// to know when to stop.
func Receive(r *wire.Reader, em EmbeddingMap) (Value, error) {
	rawTag, err := r.ReadInt8()
	if err != nil {
		return Value{}, err
	}
	return receiveTagged(r, em, rawTag)
}

func receiveTagged(r *wire.Reader, em EmbeddingMap, rawTag byte) (Value, error) {
	switch Kind(rawTag) {
	case KindEnd:
		return Value{Kind: KindEnd}, nil
	case KindNone:
		return None(), nil
	case KindBool:
		v, err := r.ReadInt8()
		if err != nil {
			return Value{}, err
		}
		return BoolVal(v != 0), nil
	case KindInt32:
		v, err := r.ReadInt32()
		if err != nil {
			return Value{}, err
		}
		return Int32Val(v), nil
	case KindInt64:
		v, err := r.ReadInt64()
		if err != nil {
			return Value{}, err
		}
		return Int64Val(v), nil
	case KindFloat:
		v, err := r.ReadFloat64()
		if err != nil {
			return Value{}, err
		}
		return FloatVal(v), nil
	case KindFrac:
		num, err := r.ReadInt64()
		if err != nil {
			return Value{}, err
		}
		den, err := r.ReadInt64()
		if err != nil {
			return Value{}, err
		}
		return FracVal(num, den), nil
	case KindString:
		v, err := r.ReadString()
		if err != nil {
			return Value{}, err
		}
		return StringVal(v), nil
	case KindList:
		n, err := r.ReadInt32()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{}, ErrUnknownTag
		}
		elems := make([]Value, 0, n)
		for i := int32(0); i < n; i++ {
			elemTag, err := r.ReadInt8()
			if err != nil {
				return Value{}, err
			}
			v, err := receiveTagged(r, em, elemTag)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return ListVal(elems), nil
	case KindTuple:
		arity, err := r.ReadInt8()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, arity)
		for i := uint8(0); i < arity; i++ {
			v, err := Receive(r, em)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return TupleVal(elems), nil
	case KindRange:
		start, err := Receive(r, em)
		if err != nil {
			return Value{}, err
		}
		stop, err := Receive(r, em)
		if err != nil {
			return Value{}, err
		}
		step, err := Receive(r, em)
		if err != nil {
			return Value{}, err
		}
		return RangeVal(start, stop, step), nil
	case KindKeyword:
		name, err := r.ReadString()
		if err != nil {
			return Value{}, err
		}
		v, err := Receive(r, em)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindKeyword, Keyword: &Keyword{Name: name, Value: v}}, nil
	case KindObject:
		id, err := r.ReadInt32()
		if err != nil {
			return Value{}, err
		}
		obj, err := em.RetrieveObject(id)
		if err != nil {
			return Value{}, err
		}
		return ObjectVal(obj), nil
	default:
		return Value{}, ErrUnknownTag
	}
}

// ReceiveArgs reads values until the '\0' sentinel, collecting positional
// values in emission order and folding any 'k'-tagged value into a keyword
// map by name. A repeated keyword name keeps the last occurrence.
func ReceiveArgs(r *wire.Reader, em EmbeddingMap) (args []Value, kwargs map[string]Value, err error) {
	kwargs = make(map[string]Value)
	for {
		v, err := Receive(r, em)
		if err != nil {
			return nil, nil, err
		}
		switch v.Kind {
		case KindEnd:
			return args, kwargs, nil
		case KindKeyword:
			kwargs[v.Keyword.Name] = v.Keyword.Value
		default:
			args = append(args, v)
		}
	}
}
