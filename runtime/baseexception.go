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

// BaseException is the basis of every exception raised across the bridge.
// Functions propagate exceptions by returning *BaseException as their last
// result.
type BaseException struct {
	Object
	args *Tuple `attr:"args"`
}

// NewException creates an instance of the exception class t carrying args.
// It does not raise it; see Frame.Raise.
func NewException(t *Type, args ...*Object) *BaseException {
	e := toBaseExceptionUnsafe(newObject(t))
	e.args = NewTuple(args...)
	return e
}

func toBaseExceptionUnsafe(o *Object) *BaseException {
	return (*BaseException)(o.toPointer())
}

// ToObject upcasts e to an Object.
func (e *BaseException) ToObject() *Object {
	return &e.Object
}

// Args returns the arguments e was created with.
func (e *BaseException) Args() *Tuple {
	if e.args == nil {
		return emptyTuple
	}
	return e.args
}

// Message returns the human readable text carried by e, which is its first
// argument when that is a string.
func (e *BaseException) Message() string {
	if e.args == nil || len(e.args.elems) == 0 {
		return ""
	}
	if first := e.args.elems[0]; first.isInstance(StrType) && len(e.args.elems) == 1 {
		return toStrUnsafe(first).Value()
	}
	s, raised := ToStr(NewRootFrame(), e.ToObject())
	if raised != nil {
		return ""
	}
	return s.Value()
}

// Error implements the error interface so that exceptions can flow through
// native code that deals in errors.
func (e *BaseException) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s: %s", e.typ.Name(), msg)
	}
	return e.typ.Name()
}

// BaseExceptionType is the root of the exception hierarchy.
var BaseExceptionType = newBasisType("BaseException", reflect.TypeOf(BaseException{}), toBaseExceptionUnsafe, ObjectType)

func baseExceptionInit(f *Frame, args Args, kwargs KWArgs) (*Object, *BaseException) {
	if raised := checkMethodVarArgs(f, "__init__", args, BaseExceptionType); raised != nil {
		return nil, raised
	}
	if len(kwargs) > 0 {
		return nil, f.RaiseType(KeywordNotSupportedErrorType, "__init__() takes no keyword arguments")
	}
	e := toBaseExceptionUnsafe(args[0])
	e.args = NewTuple(args[1:].makeCopy()...)
	return None, nil
}

func baseExceptionRepr(f *Frame, o *Object) (*Object, *BaseException) {
	e := toBaseExceptionUnsafe(o)
	argsString := "()"
	if e.args != nil {
		s, raised := Repr(f, e.args.ToObject())
		if raised != nil {
			return nil, raised
		}
		argsString = s.Value()
	}
	return NewStr(e.typ.Name() + argsString).ToObject(), nil
}

func baseExceptionStr(f *Frame, o *Object) (*Object, *BaseException) {
	e := toBaseExceptionUnsafe(o)
	if e.args == nil || len(e.args.elems) == 0 {
		return NewStr("").ToObject(), nil
	}
	if len(e.args.elems) == 1 {
		s, raised := ToStr(f, e.args.elems[0])
		if raised != nil {
			return nil, raised
		}
		return s.ToObject(), nil
	}
	s, raised := ToStr(f, e.args.ToObject())
	if raised != nil {
		return nil, raised
	}
	return s.ToObject(), nil
}

func initBaseExceptionType(map[string]*Object) {
	BaseExceptionType.RegisterFunc("__init__", baseExceptionInit, "")
	BaseExceptionType.slots.Repr = &unaryOpSlot{baseExceptionRepr}
	BaseExceptionType.slots.Str = &unaryOpSlot{baseExceptionStr}
}
