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
	"reflect"
	"sync"
)

var (
	nativeBasis = reflect.TypeOf(native{})
	// nativeType is the class of opaque Go values that have no better
	// object representation.
	nativeType         = newBasisType("native", nativeBasis, toNativeUnsafe, ObjectType)
	nativeClassesMutex = sync.Mutex{}
	nativeClasses      = map[reflect.Type]*Type{}
)

// native holds a Go value. It is the basis of opaque natives and of every
// instance of a native class, including instances of dynamic subclasses of
// native classes.
type native struct {
	Object
	value reflect.Value
}

func newNative(v reflect.Value) *native {
	return &native{Object{typ: nativeType}, v}
}

func toNativeUnsafe(o *Object) *native {
	return (*native)(o.toPointer())
}

// ToObject upcasts n to an Object.
func (n *native) ToObject() *Object {
	return &n.Object
}

func nativeNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	if v := toNativeUnsafe(o).value; v.IsValid() {
		return v, nil
	}
	return reflect.ValueOf(o), nil
}

func nativeRepr(f *Frame, o *Object) (*Object, *BaseException) {
	v := toNativeUnsafe(o).value
	if !v.IsValid() {
		return NewStr("<native nil>").ToObject(), nil
	}
	return NewStr(fmt.Sprintf("<native %s>", v.Type())).ToObject(), nil
}

func initNativeType(map[string]*Object) {
	nativeType.flags = typeFlagDefault &^ (typeFlagInstantiable | typeFlagBasetype)
	nativeType.slots.Native = &nativeSlot{nativeNative}
	nativeType.slots.Repr = &unaryOpSlot{nativeRepr}
}

// nativeClass records the Go type backing a native class.
type nativeClass struct {
	rtype reflect.Type
}

// NewNativeClass creates a class whose instances are backed by a Go value.
// ctor is registered as the class' __init__ under mode and must return the
// value as its first result, optionally followed by an error:
//
//	func([f *Frame,] [args []V,] [kwargs map[string]K]) (T[, error])
//
// Exported fields of T (or of the struct T points to) tagged `attr:"name"`
// become attributes of the instances; `attr_mode:"rw"` makes them writable.
// Methods are added with Register, using a receiver of type T.
func NewNativeClass(name, doc string, mode ArityMode, ctor interface{}) *Type {
	desc, err := NewCallableDescriptor("__init__", mode, ctor, doc)
	if err == nil && (desc.dyn != nil || desc.sig.recv != nil || desc.sig.numResults != 1) {
		err = fmt.Errorf("constructor must take no receiver and return exactly one value")
	}
	if err != nil {
		logFatal(fmt.Sprintf("native class %s: %s", name, err))
		return nil
	}
	rtype := desc.fn.Type().Out(0)
	t := newType(TypeType, name, nativeBasis, []*Type{ObjectType}, NewDict())
	t.doc = doc
	t.flags |= typeFlagHeap
	t.native = &nativeClass{rtype: rtype}
	t.slots.Native = &nativeSlot{nativeNative}
	if derefed := derefType(rtype); derefed.Kind() == reflect.Struct {
		for i := 0; i < derefed.NumField(); i++ {
			field := derefed.Field(i)
			attr := field.Tag.Get("attr")
			if attr == "" {
				continue
			}
			if field.PkgPath != "" {
				logFatal(fmt.Sprintf("native class %s: attr field %s must be exported", name, field.Name))
			}
			t.Dict().SetItem(attr, newNativeField(t, attr, field, field.Tag.Get("attr_mode") == "rw"))
		}
	}
	if err := prepareType(t); err != "" {
		logFatal(err)
	}
	desc.ctor = true
	t.table.put(desc)
	nativeClassesMutex.Lock()
	if _, ok := nativeClasses[rtype]; !ok {
		nativeClasses[rtype] = t
	}
	nativeClassesMutex.Unlock()
	return t
}

// NewNativeInstance wraps value in a new instance of the native class t
// without running t's constructor.
func NewNativeInstance(t *Type, value interface{}) (*Object, error) {
	nc := t.nativeClass()
	if nc == nil {
		return nil, fmt.Errorf("%s is not a native class", t.Name())
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || !v.Type().AssignableTo(nc.rtype) {
		return nil, fmt.Errorf("%s instances hold %s, not %T", t.Name(), nc.rtype, value)
	}
	return newNativeInstance(t, v), nil
}

func newNativeInstance(t *Type, v reflect.Value) *Object {
	o := newObject(t)
	toNativeUnsafe(o).value = v
	return o
}

// NativeValue returns the Go value held by o, if it is a native object with
// an initialized value.
func NativeValue(o *Object) (interface{}, bool) {
	if o.typ.basis != nativeBasis {
		return nil, false
	}
	v := toNativeUnsafe(o).value
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func lookupNativeClass(rtype reflect.Type) *Type {
	nativeClassesMutex.Lock()
	t := nativeClasses[rtype]
	nativeClassesMutex.Unlock()
	return t
}

func derefType(rtype reflect.Type) reflect.Type {
	for rtype.Kind() == reflect.Ptr {
		rtype = rtype.Elem()
	}
	return rtype
}

// nativeStruct returns the struct value behind o's native value.
func nativeStruct(f *Frame, o *Object, attr string) (reflect.Value, *BaseException) {
	v := toNativeUnsafe(o).value
	for v.IsValid() && v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		format := "'%s' object is not initialized; cannot access '%s'"
		return reflect.Value{}, f.RaiseType(AttributeErrorType, fmt.Sprintf(format, o.typ.Name(), attr))
	}
	return v, nil
}

// newNativeField exposes a struct field of t's native value as a property.
func newNativeField(t *Type, attr string, field reflect.StructField, writable bool) *Object {
	get := newBuiltinFunction(attr, func(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
		if raised := checkFunctionArgs(f, attr, args, t); raised != nil {
			return nil, raised
		}
		v, raised := nativeStruct(f, args[0], attr)
		if raised != nil {
			return nil, raised
		}
		return WrapNative(f, v.FieldByIndex(field.Index))
	}).ToObject()
	set := None
	if writable {
		set = newBuiltinFunction(attr, func(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
			if raised := checkFunctionArgs(f, attr, args, t, ObjectType); raised != nil {
				return nil, raised
			}
			v, raised := nativeStruct(f, args[0], attr)
			if raised != nil {
				return nil, raised
			}
			fieldValue := v.FieldByIndex(field.Index)
			if !fieldValue.CanSet() {
				msg := fmt.Sprintf("cannot set field '%s' of type '%s'", attr, t.Name())
				return nil, f.RaiseType(AttributeErrorType, msg)
			}
			value, raised := maybeConvertValue(f, args[1], field.Type)
			if raised != nil {
				return nil, raised
			}
			fieldValue.Set(value)
			return None, nil
		}).ToObject()
	}
	return newProperty(get, set, nil).ToObject()
}
