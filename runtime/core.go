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
	"fmt"
	"log"
	"reflect"
	"sort"
)

var (
	logFatal = func(msg string) { log.Fatal(msg) }
)

// Call invokes callable with the given positional and keyword args.
func Call(f *Frame, callable *Object, args Args, kwargs KWArgs) (*Object, *BaseException) {
	return callable.Call(f, args, kwargs)
}

// DelAttr removes the attribute name from o.
func DelAttr(f *Frame, o *Object, name string) *BaseException {
	delAttr := o.typ.slots.DelAttr
	if delAttr == nil {
		return f.RaiseType(SystemErrorType, fmt.Sprintf("'%s' object has no __delattr__ method", o.typ.Name()))
	}
	return delAttr.Fn(f, o, name)
}

// Dir returns the sorted names visible on o: its instance attributes, the
// attributes of its class and every callable registered along the mro. When
// o is a class the class' own mro is listed.
func Dir(f *Frame, o *Object) []string {
	seen := map[string]bool{}
	if d := o.Dict(); d != nil {
		for _, k := range d.Keys() {
			seen[k] = true
		}
	}
	t := o.typ
	if o.isInstance(TypeType) {
		t = toTypeUnsafe(o)
	}
	for _, b := range t.mro {
		for _, name := range b.table.Names() {
			seen[name] = true
		}
		if d := b.Dict(); d != nil {
			for _, k := range d.Keys() {
				seen[k] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eq reports whether v and w are equal. Numbers compare by value across int
// and float, strings by content, tuples and dicts element-wise and native
// objects by their Go values. Other objects are equal only to themselves.
func Eq(f *Frame, v, w *Object) (bool, *BaseException) {
	if v == w {
		return true, nil
	}
	switch {
	case isNumber(v) && isNumber(w):
		return numberValue(v) == numberValue(w), nil
	case v.isInstance(StrType) && w.isInstance(StrType):
		return toStrUnsafe(v).Value() == toStrUnsafe(w).Value(), nil
	case v.isInstance(TupleType) && w.isInstance(TupleType):
		return seqEq(f, toTupleUnsafe(v).elems, toTupleUnsafe(w).elems)
	case v.isInstance(DictType) && w.isInstance(DictType):
		return dictEq(f, toDictUnsafe(v), toDictUnsafe(w))
	case v.typ.basis == nativeBasis && w.typ.basis == nativeBasis:
		vv, wv := toNativeUnsafe(v).value, toNativeUnsafe(w).value
		if !vv.IsValid() || !wv.IsValid() || !vv.CanInterface() || !wv.CanInterface() {
			return false, nil
		}
		return reflect.DeepEqual(vv.Interface(), wv.Interface()), nil
	}
	return false, nil
}

func isNumber(o *Object) bool {
	return o.isInstance(IntType) || o.isInstance(FloatType)
}

func numberValue(o *Object) float64 {
	if o.isInstance(FloatType) {
		return toFloatUnsafe(o).Value()
	}
	return float64(toIntUnsafe(o).Value())
}

func seqEq(f *Frame, v, w []*Object) (bool, *BaseException) {
	if len(v) != len(w) {
		return false, nil
	}
	for i := range v {
		eq, raised := Eq(f, v[i], w[i])
		if raised != nil || !eq {
			return false, raised
		}
	}
	return true, nil
}

func dictEq(f *Frame, v, w *Dict) (bool, *BaseException) {
	if v.Len() != w.Len() {
		return false, nil
	}
	for _, k := range v.Keys() {
		wv := w.GetItem(k)
		if wv == nil {
			return false, nil
		}
		eq, raised := Eq(f, v.GetItem(k), wv)
		if raised != nil || !eq {
			return false, raised
		}
	}
	return true, nil
}

// GetAttr returns the named attribute of o. When def is non-nil it is
// returned instead of raising AttributeError.
func GetAttr(f *Frame, o *Object, name string, def *Object) (*Object, *BaseException) {
	getAttribute := o.typ.slots.GetAttribute
	if getAttribute == nil {
		msg := fmt.Sprintf("'%s' has no attribute '%s'", o.typ.Name(), name)
		return nil, f.RaiseType(AttributeErrorType, msg)
	}
	result, raised := getAttribute.Fn(f, o, name)
	if raised != nil && raised.isInstance(AttributeErrorType) && def != nil {
		f.RestoreExc(nil)
		result, raised = def, nil
	}
	return result, raised
}

// IsInstance returns true if o is an instance of t or of one of its
// subclasses.
func IsInstance(o *Object, t *Type) bool {
	return o.isInstance(t)
}

// Repr returns a string representation of o, meant for debugging.
func Repr(f *Frame, o *Object) (*Str, *BaseException) {
	repr := o.typ.slots.Repr
	if repr == nil {
		return NewStr(fmt.Sprintf("<%s object at %p>", o.typ.Name(), o)), nil
	}
	r, raised := repr.Fn(f, o)
	if raised != nil {
		return nil, raised
	}
	if !r.isInstance(StrType) {
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("__repr__ returned non-string (type %s)", r.typ.Name()))
	}
	return toStrUnsafe(r), nil
}

// SetAttr sets the named attribute of o to value.
func SetAttr(f *Frame, o *Object, name string, value *Object) *BaseException {
	setAttr := o.typ.slots.SetAttr
	if setAttr == nil {
		return f.RaiseType(SystemErrorType, fmt.Sprintf("'%s' object has no __setattr__ method", o.typ.Name()))
	}
	return setAttr.Fn(f, o, name, value)
}

// ToStr returns the informal string form of o, which is its repr unless its
// class says otherwise.
func ToStr(f *Frame, o *Object) (*Str, *BaseException) {
	str := o.typ.slots.Str
	if str == nil {
		return Repr(f, o)
	}
	result, raised := str.Fn(f, o)
	if raised != nil {
		return nil, raised
	}
	if !result.isInstance(StrType) {
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("__str__ returned non-string (type %s)", result.typ.Name()))
	}
	return toStrUnsafe(result), nil
}

func checkFunctionArgs(f *Frame, function string, args Args, types ...*Type) *BaseException {
	if len(args) != len(types) {
		msg := fmt.Sprintf("'%s' requires %d arguments", function, len(types))
		return f.RaiseType(TypeErrorType, msg)
	}
	for i, t := range types {
		if !args[i].isInstance(t) {
			format := "'%s' requires a '%s' object but received a %q"
			return f.RaiseType(TypeErrorType, fmt.Sprintf(format, function, t.Name(), args[i].typ.Name()))
		}
	}
	return nil
}

func checkMethodArgs(f *Frame, method string, args Args, types ...*Type) *BaseException {
	if len(args) != len(types) {
		msg := fmt.Sprintf("'%s' of '%s' requires %d arguments", method, types[0].Name(), len(types))
		return f.RaiseType(TypeErrorType, msg)
	}
	for i, t := range types {
		if !args[i].isInstance(t) {
			format := "'%s' requires a '%s' object but received a '%s'"
			return f.RaiseType(TypeErrorType, fmt.Sprintf(format, method, t.Name(), args[i].typ.Name()))
		}
	}
	return nil
}

func checkMethodVarArgs(f *Frame, method string, args Args, types ...*Type) *BaseException {
	if len(args) <= len(types) {
		return checkMethodArgs(f, method, args, types...)
	}
	return checkMethodArgs(f, method, args[:len(types)], types...)
}

func sortedKeys(m map[string]*Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMapKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
