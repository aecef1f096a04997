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
	"reflect"
)

var (
	// superType is the class of super proxies.
	superType = newBasisType("super", reflect.TypeOf(super{}), toSuperUnsafe, ObjectType)
)

// super proxies attribute lookups on obj to the classes that follow sub in
// obj's mro.
type super struct {
	Object
	sub     *Type
	obj     *Object
	objType *Type
}

func toSuperUnsafe(o *Object) *super {
	return (*super)(o.toPointer())
}

// NewSuper returns the proxy super(sub, obj). obj must be an instance of sub
// or a subclass of it.
func NewSuper(f *Frame, sub *Type, obj *Object) (*Object, *BaseException) {
	var objType *Type
	if obj.isInstance(TypeType) && toTypeUnsafe(obj).isSubclass(sub) {
		objType = toTypeUnsafe(obj)
	} else if obj.isInstance(sub) {
		objType = obj.typ
	} else {
		return nil, f.RaiseType(TypeErrorType, "super(type, obj): obj must be an instance or subtype of type")
	}
	sup := toSuperUnsafe(newObject(superType))
	sup.sub = sub
	sup.obj = obj
	sup.objType = objType
	return sup.ToObject(), nil
}

// ToObject upcasts s to an Object.
func (s *super) ToObject() *Object {
	return &s.Object
}

// Super calls the implementation of name that self's override on sub
// overrides, i.e. super(sub, self).name(*args, **kwargs).
func Super(f *Frame, sub *Type, self *Object, name string, args Args, kwargs KWArgs) (*Object, *BaseException) {
	desc, raised := ResolveFrom(f, sub, self, name)
	if raised != nil {
		return nil, raised
	}
	return Invoke(f, desc, self, args, kwargs)
}

func superGetAttribute(f *Frame, o *Object, name string) (*Object, *BaseException) {
	sup := toSuperUnsafe(o)
	// Tell the truth about the __class__ attribute.
	if sup.objType != nil && name != "__class__" {
		mro := sup.objType.mro
		n := len(mro)
		// Start from the immediate mro successor to the specified type.
		i := 0
		for i < n && mro[i] != sup.sub {
			i++
		}
		i++
		var inst *Object
		if sup.obj != sup.objType.ToObject() {
			inst = sup.obj
		}
		for ; i < n; i++ {
			if desc := mro[i].table.Lookup(name); desc != nil {
				if inst == nil {
					return newUnboundMethod(desc, sup.objType).ToObject(), nil
				}
				return newBoundMethod(desc, inst).ToObject(), nil
			}
			d := mro[i].Dict()
			if d == nil {
				continue
			}
			if res := d.GetItem(name); res != nil {
				if get := res.typ.slots.Get; get != nil {
					// Found a descriptor so invoke it.
					return get.Fn(f, res, inst, sup.objType)
				}
				return res, nil
			}
		}
	}
	// Attribute not found on base classes so lookup the attr on the super
	// object itself. Most likely will AttributeError.
	return objectGetAttribute(f, o, name)
}

func superNew(f *Frame, t *Type, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "super", args, TypeType, ObjectType); raised != nil {
		return nil, raised
	}
	return NewSuper(f, toTypeUnsafe(args[0]), args[1])
}

func initSuperType(map[string]*Object) {
	superType.flags &^= typeFlagBasetype
	superType.slots.GetAttribute = &getAttributeSlot{superGetAttribute}
	superType.slots.New = &newSlot{superNew}
}
