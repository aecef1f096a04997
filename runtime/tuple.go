// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pibridge

import (
	"bytes"
	"reflect"
)

// Tuple is an immutable sequence. Positional arguments travel as tuples and
// native slices marshal to them.
//
// Tuples are thread safe by virtue of being immutable.
type Tuple struct {
	Object
	elems []*Object
}

// NewTuple returns a tuple containing the given elements.
func NewTuple(elems ...*Object) *Tuple {
	if len(elems) == 0 {
		return emptyTuple
	}
	return &Tuple{Object: Object{typ: TupleType}, elems: elems}
}

func toTupleUnsafe(o *Object) *Tuple {
	return (*Tuple)(o.toPointer())
}

// GetItem returns the i'th element of t. Bounds are unchecked and therefore
// this method will panic unless 0 <= i < t.Len().
func (t *Tuple) GetItem(i int) *Object {
	return t.elems[i]
}

// Len returns the number of elements in t.
func (t *Tuple) Len() int {
	return len(t.elems)
}

// ToObject upcasts t to an Object.
func (t *Tuple) ToObject() *Object {
	return &t.Object
}

// TupleType is the class of tuples.
var TupleType = newBasisType("tuple", reflect.TypeOf(Tuple{}), toTupleUnsafe, ObjectType)

var emptyTuple = &Tuple{Object: Object{typ: TupleType}}

func tupleNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	elems := toTupleUnsafe(o).elems
	s := make([]interface{}, len(elems))
	for i, elem := range elems {
		v, raised := ToNative(f, elem)
		if raised != nil {
			return reflect.Value{}, raised
		}
		if v.IsValid() && v.CanInterface() {
			s[i] = v.Interface()
		}
	}
	return reflect.ValueOf(s), nil
}

func tupleRepr(f *Frame, o *Object) (*Object, *BaseException) {
	t := toTupleUnsafe(o)
	var buf bytes.Buffer
	buf.WriteString("(")
	for i, elem := range t.elems {
		if i > 0 {
			buf.WriteString(", ")
		}
		s, raised := Repr(f, elem)
		if raised != nil {
			return nil, raised
		}
		buf.WriteString(s.Value())
	}
	if len(t.elems) == 1 {
		buf.WriteString(",")
	}
	buf.WriteString(")")
	return NewStr(buf.String()).ToObject(), nil
}

func initTupleType(map[string]*Object) {
	TupleType.flags &^= typeFlagInstantiable
	TupleType.slots.Native = &nativeSlot{tupleNative}
	TupleType.slots.Repr = &unaryOpSlot{tupleRepr}
}
