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
	"sync/atomic"
	"unsafe"
)

var (
	objectBasis = reflect.TypeOf(Object{})
	// ObjectType is the root of every class hierarchy.
	//
	// We don't use newBasisType() here since that introduces an initialization
	// cycle between TypeType and ObjectType.
	ObjectType = &Type{
		name:  "object",
		basis: objectBasis,
		flags: typeFlagDefault,
		slots: typeSlots{Basis: &basisSlot{objectBasisFunc}},
	}
)

// Object is the header shared by every value that crosses the bridge. Basis
// structs embed it as their first field so that a *Object can be downcast to
// the concrete basis with the toXUnsafe helpers.
type Object struct {
	typ  *Type
	dict *Dict
}

func newObject(t *Type) *Object {
	var dict *Dict
	if t != ObjectType {
		dict = NewDict()
	}
	o := (*Object)(unsafe.Pointer(reflect.New(t.basis).Pointer()))
	o.typ = t
	o.setDict(dict)
	return o
}

// Call invokes the callable object o with the given positional and keyword
// args. args may be empty. kwargs can be nil.
func (o *Object) Call(f *Frame, args Args, kwargs KWArgs) (*Object, *BaseException) {
	call := o.Type().slots.Call
	if call == nil {
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("'%s' object is not callable", o.Type().Name()))
	}
	return call.Fn(f, o, args, kwargs)
}

// Dict returns o's instance dict or nil when o carries none.
func (o *Object) Dict() *Dict {
	p := (*unsafe.Pointer)(unsafe.Pointer(&o.dict))
	return (*Dict)(atomic.LoadPointer(p))
}

func (o *Object) setDict(d *Dict) {
	p := (*unsafe.Pointer)(unsafe.Pointer(&o.dict))
	atomic.StorePointer(p, unsafe.Pointer(d))
}

// String returns a string representation of o, e.g. for debugging.
func (o *Object) String() string {
	if o == nil {
		return "nil"
	}
	s, raised := Repr(NewRootFrame(), o)
	if raised != nil {
		return fmt.Sprintf("<%s object (repr raised %s)>", o.typ.Name(), raised.typ.Name())
	}
	return s.Value()
}

// Type returns the class of o.
func (o *Object) Type() *Type {
	return o.typ
}

func (o *Object) toPointer() unsafe.Pointer {
	return unsafe.Pointer(o)
}

func (o *Object) isInstance(t *Type) bool {
	return o.typ.isSubclass(t)
}

func objectBasisFunc(o *Object) reflect.Value {
	return reflect.ValueOf(o).Elem()
}

func objectDelAttr(f *Frame, o *Object, name string) *BaseException {
	if desc, _ := o.typ.mroLookup(name); desc != nil {
		if del := desc.typ.slots.Delete; del != nil {
			return del.Fn(f, desc, o)
		}
	}
	if d := o.Dict(); d != nil && d.DelItem(name) {
		return nil
	}
	format := "'%s' object has no attribute '%s'"
	return f.RaiseType(AttributeErrorType, fmt.Sprintf(format, o.typ.Name(), name))
}

// objectGetAttribute looks up name on o. Data descriptors on the class win
// over the instance dict, which wins over registered callables and plain
// class attributes.
func objectGetAttribute(f *Frame, o *Object, name string) (*Object, *BaseException) {
	var typeGet *getSlot
	typeAttr, callable := o.typ.mroLookup(name)
	if typeAttr != nil {
		typeGet = typeAttr.typ.slots.Get
		if typeGet != nil && (typeAttr.typ.slots.Set != nil || typeAttr.typ.slots.Delete != nil) {
			return typeGet.Fn(f, typeAttr, o, o.Type())
		}
	}
	if d := o.Dict(); d != nil {
		if value := d.GetItem(name); value != nil {
			return value, nil
		}
	}
	if callable != nil {
		return newBoundMethod(callable, o).ToObject(), nil
	}
	if typeGet != nil {
		return typeGet.Fn(f, typeAttr, o, o.Type())
	}
	if typeAttr != nil {
		return typeAttr, nil
	}
	format := "'%s' object has no attribute '%s'"
	return nil, f.RaiseType(AttributeErrorType, fmt.Sprintf(format, o.typ.Name(), name))
}

func objectNew(f *Frame, t *Type, _ Args, _ KWArgs) (*Object, *BaseException) {
	if t.flags&typeFlagInstantiable == 0 {
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("cannot create '%s' instances", t.Name()))
	}
	return newObject(t), nil
}

func objectRepr(f *Frame, o *Object) (*Object, *BaseException) {
	return NewStr(fmt.Sprintf("<%s object at %p>", o.typ.Name(), o)).ToObject(), nil
}

func objectSetAttr(f *Frame, o *Object, name string, value *Object) *BaseException {
	if typeAttr, _ := o.typ.mroLookup(name); typeAttr != nil {
		if typeSet := typeAttr.typ.slots.Set; typeSet != nil {
			return typeSet.Fn(f, typeAttr, o, value)
		}
	}
	if d := o.Dict(); d != nil {
		d.SetItem(name, value)
		return nil
	}
	return f.RaiseType(AttributeErrorType, fmt.Sprintf("'%s' object has no attribute '%s'", o.typ.Name(), name))
}

func initObjectType(map[string]*Object) {
	ObjectType.typ = TypeType
	ObjectType.table = newDispatchTable(ObjectType)
	ObjectType.doc = "The most base type."
	ObjectType.slots.DelAttr = &delAttrSlot{objectDelAttr}
	ObjectType.slots.GetAttribute = &getAttributeSlot{objectGetAttribute}
	ObjectType.slots.New = &newSlot{objectNew}
	ObjectType.slots.Repr = &unaryOpSlot{objectRepr}
	ObjectType.slots.SetAttr = &setAttrSlot{objectSetAttr}
}
