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

var (
	// FunctionType is the class of functions defined at run time.
	FunctionType = newBasisType("function", reflect.TypeOf(Function{}), toFunctionUnsafe, ObjectType)
)

// Args represent positional parameters in a call.
type Args []*Object

func (a Args) makeCopy() Args {
	result := make(Args, len(a))
	copy(result, a)
	return result
}

// KWArg represents a keyword argument in a call.
type KWArg struct {
	Name  string
	Value *Object
}

// KWArgs represents a list of keyword parameters in a call, in the order
// the caller supplied them.
type KWArgs []KWArg

// String returns a string representation of k, e.g. for debugging.
func (k KWArgs) String() string {
	return k.makeDict().String()
}

func (k KWArgs) makeDict() *Dict {
	d := NewDict()
	for _, kw := range k {
		d.SetItem(kw.Name, kw.Value)
	}
	return d
}

// Func is the uniform shape of callables defined at run time rather than
// from a native entry point. When such a callable is bound to an instance,
// the instance arrives as args[0].
type Func func(f *Frame, args Args, kwargs KWArgs) (*Object, *BaseException)

// Function wraps a Func so that it can be stored, passed around and called
// like any other object.
type Function struct {
	Object
	fn   Func
	name string `attr:"__name__"`
	doc  string `attr:"__doc__"`
}

// NewFunction returns a function object with the given name and docstring
// that invokes fn when called. Placing the result in the dict passed to
// NewClass turns it into a method of the new class.
func NewFunction(name, doc string, fn Func) *Function {
	return &Function{Object: Object{typ: FunctionType, dict: NewDict()}, fn: fn, name: name, doc: doc}
}

// newBuiltinFunction returns a function object with the given name that
// invokes fn when called.
func newBuiltinFunction(name string, fn Func) *Function {
	return NewFunction(name, "", fn)
}

func toFunctionUnsafe(o *Object) *Function {
	return (*Function)(o.toPointer())
}

// ToObject upcasts f to an Object.
func (f *Function) ToObject() *Object {
	return &f.Object
}

// Name returns f's name field.
func (f *Function) Name() string {
	return f.name
}

func functionCall(f *Frame, callable *Object, args Args, kwargs KWArgs) (*Object, *BaseException) {
	return toFunctionUnsafe(callable).fn(f, args, kwargs)
}

func functionRepr(_ *Frame, o *Object) (*Object, *BaseException) {
	fun := toFunctionUnsafe(o)
	return NewStr(fmt.Sprintf("<%s %s at %p>", fun.typ.Name(), fun.Name(), fun)).ToObject(), nil
}

func initFunctionType(map[string]*Object) {
	FunctionType.flags &= ^(typeFlagInstantiable | typeFlagBasetype)
	FunctionType.slots.Call = &callSlot{functionCall}
	FunctionType.slots.Repr = &unaryOpSlot{functionRepr}
}
