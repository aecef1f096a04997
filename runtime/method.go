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
)

// Method pairs a callable descriptor with the class it was looked up on and,
// when bound, the instance it was looked up through. Calling a bound method
// supplies the instance as the call target; calling an unbound method takes
// the target from the first positional argument.
type Method struct {
	Object
	desc  *CallableDescriptor
	self  *Object `attr:"__self__"`
	class *Type
}

func newBoundMethod(desc *CallableDescriptor, self *Object) *Method {
	return &Method{Object{typ: MethodType}, desc, self, self.typ}
}

func newUnboundMethod(desc *CallableDescriptor, class *Type) *Method {
	return &Method{Object{typ: MethodType}, desc, nil, class}
}

func toMethodUnsafe(o *Object) *Method {
	return (*Method)(o.toPointer())
}

// ToObject upcasts m to an Object.
func (m *Method) ToObject() *Object {
	return &m.Object
}

// Descriptor returns the callable m dispatches to.
func (m *Method) Descriptor() *CallableDescriptor {
	return m.desc
}

// Self returns the instance m is bound to, or nil for unbound methods.
func (m *Method) Self() *Object {
	return m.self
}

// MethodType is the class of bound and unbound methods.
var MethodType = newBasisType("instancemethod", reflect.TypeOf(Method{}), toMethodUnsafe, ObjectType)

func methodCall(f *Frame, callable *Object, args Args, kwargs KWArgs) (*Object, *BaseException) {
	m := toMethodUnsafe(callable)
	if m.self != nil {
		return Invoke(f, m.desc, m.self, args, kwargs)
	}
	if len(args) < 1 {
		format := "unbound method %s() must be called with %s " +
			"instance as first argument (got nothing instead)"
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf(format, m.desc.Name(), m.class.Name()))
	}
	if !args[0].isInstance(m.class) {
		format := "unbound method %s() must be called with %s " +
			"instance as first argument (got %s instance instead)"
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf(format, m.desc.Name(), m.class.Name(), args[0].typ.Name()))
	}
	return Invoke(f, m.desc, args[0], args[1:], kwargs)
}

func methodGetAttribute(f *Frame, o *Object, name string) (*Object, *BaseException) {
	m := toMethodUnsafe(o)
	switch name {
	case "__name__":
		return NewStr(m.desc.Name()).ToObject(), nil
	case "__doc__":
		if m.desc.Doc() == "" {
			return None, nil
		}
		return NewStr(m.desc.Doc()).ToObject(), nil
	}
	return objectGetAttribute(f, o, name)
}

func methodRepr(f *Frame, o *Object) (*Object, *BaseException) {
	m := toMethodUnsafe(o)
	if m.self == nil {
		return NewStr(fmt.Sprintf("<unbound method %s.%s>", m.class.Name(), m.desc.Name())).ToObject(), nil
	}
	repr, raised := Repr(f, m.self)
	if raised != nil {
		return nil, raised
	}
	s := fmt.Sprintf("<bound method %s.%s of %s>", m.class.Name(), m.desc.Name(), repr.Value())
	return NewStr(s).ToObject(), nil
}

func initMethodType(map[string]*Object) {
	MethodType.flags &= ^(typeFlagInstantiable | typeFlagBasetype)
	MethodType.slots.Call = &callSlot{methodCall}
	MethodType.slots.GetAttribute = &getAttributeSlot{methodGetAttribute}
	MethodType.slots.Repr = &unaryOpSlot{methodRepr}
}
