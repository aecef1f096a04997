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

// ArityMode declares the argument shape a callable accepts.
type ArityMode int

const (
	// ArityNone callables take no arguments besides their target.
	ArityNone ArityMode = iota
	// ArityVarArgs callables take any number of positional arguments.
	ArityVarArgs
	// ArityKeywords callables take positional and keyword arguments.
	ArityKeywords
)

var arityModeNames = [...]string{"noargs", "varargs", "keywords"}

func (m ArityMode) String() string {
	if m < 0 || int(m) >= len(arityModeNames) {
		return fmt.Sprintf("ArityMode(%d)", int(m))
	}
	return arityModeNames[m]
}

var (
	baseExceptionPtrType = reflect.TypeOf((*BaseException)(nil))
	errorType            = reflect.TypeOf((*error)(nil)).Elem()
	framePtrType         = reflect.TypeOf((*Frame)(nil))
	objectPtrType        = reflect.TypeOf((*Object)(nil))
)

// CallableDescriptor is a named entry point registered against a class or
// module. The entry is either a native Go function whose parameter list was
// checked against mode at registration, or a Func that already speaks in
// objects.
//
// Descriptors are immutable once registered.
type CallableDescriptor struct {
	name  string
	doc   string
	mode  ArityMode
	owner *Type
	fn    reflect.Value
	sig   *signature
	dyn   Func
	// ctor marks a native class constructor whose single result becomes
	// the target's native value.
	ctor bool
}

// NewCallableDescriptor validates fn against mode and returns a descriptor
// for it. Native entry points have the shape
//
//	func([f *Frame,] [recv R,] [args []V,] [kwargs map[string]K]) ([result T,] [error | *BaseException])
//
// where args is present for ArityVarArgs and ArityKeywords and kwargs only
// for ArityKeywords. A varargs entry point may instead declare args as a
// final variadic parameter.
func NewCallableDescriptor(name string, mode ArityMode, fn interface{}, doc string) (*CallableDescriptor, error) {
	if mode < ArityNone || mode > ArityKeywords {
		return nil, fmt.Errorf("%s: invalid arity mode %d", name, int(mode))
	}
	if fn == nil {
		return nil, fmt.Errorf("%s: nil entry point", name)
	}
	var dyn Func
	switch fn := fn.(type) {
	case Func:
		dyn = fn
	case func(*Frame, Args, KWArgs) (*Object, *BaseException):
		dyn = fn
	}
	if dyn != nil {
		if mode != ArityKeywords {
			return nil, fmt.Errorf("%s: dynamic callables must use %s mode, not %s", name, ArityKeywords, mode)
		}
		return newDynamicDescriptor(name, dyn, doc), nil
	}
	fnValue := reflect.ValueOf(fn)
	sig, err := newSignature(mode, fnValue.Type())
	if err != nil {
		return nil, fmt.Errorf("%s: %s", name, err)
	}
	return &CallableDescriptor{name: name, doc: doc, mode: mode, fn: fnValue, sig: sig}, nil
}

func newDynamicDescriptor(name string, fn Func, doc string) *CallableDescriptor {
	return &CallableDescriptor{name: name, doc: doc, mode: ArityKeywords, dyn: fn}
}

// Name returns the name d was registered under.
func (d *CallableDescriptor) Name() string {
	return d.name
}

// Doc returns d's docstring.
func (d *CallableDescriptor) Doc() string {
	return d.doc
}

// Mode returns d's arity mode.
func (d *CallableDescriptor) Mode() ArityMode {
	return d.mode
}

// Owner returns the class whose dispatch table holds d, or nil before d is
// registered.
func (d *CallableDescriptor) Owner() *Type {
	return d.owner
}

func (d *CallableDescriptor) String() string {
	owner := "?"
	if d.owner != nil {
		owner = d.owner.Name()
	}
	return fmt.Sprintf("<callable %s.%s (%s)>", owner, d.name, d.mode)
}

// qualifiedName names d the way error messages refer to it.
func (d *CallableDescriptor) qualifiedName() string {
	return d.name + "()"
}

// signature is the parameter layout of a native entry point.
type signature struct {
	frame      bool
	recv       reflect.Type
	args       reflect.Type
	kwargs     reflect.Type
	variadic   bool
	numResults int
	errResult  bool
}

func newSignature(mode ArityMode, rtype reflect.Type) (*signature, error) {
	if rtype.Kind() != reflect.Func {
		return nil, fmt.Errorf("entry point must be a func, not %s", rtype)
	}
	sig := &signature{variadic: rtype.IsVariadic()}
	numIn := rtype.NumIn()
	i := 0
	if numIn > 0 && rtype.In(0) == framePtrType {
		sig.frame = true
		i++
	}
	want := int(mode)
	switch extra := numIn - i - want; extra {
	case 0:
	case 1:
		sig.recv = rtype.In(i)
		i++
	default:
		return nil, fmt.Errorf("%s entry point %s takes %d parameters, want %d or %d besides the frame", mode, rtype, numIn-i, want, want+1)
	}
	if sig.variadic && mode != ArityVarArgs {
		return nil, fmt.Errorf("%s entry point %s cannot be variadic", mode, rtype)
	}
	if mode >= ArityVarArgs {
		sig.args = rtype.In(i)
		i++
		if sig.args.Kind() != reflect.Slice {
			return nil, fmt.Errorf("args parameter of %s must be a slice, not %s", rtype, sig.args)
		}
	}
	if mode == ArityKeywords {
		sig.kwargs = rtype.In(i)
		if sig.kwargs.Kind() != reflect.Map || sig.kwargs.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("kwargs parameter of %s must be a map keyed by string, not %s", rtype, sig.kwargs)
		}
	}
	numOut := rtype.NumOut()
	if numOut > 0 {
		if last := rtype.Out(numOut - 1); last == baseExceptionPtrType || last == errorType {
			sig.errResult = true
			numOut--
		}
	}
	sig.numResults = numOut
	return sig, nil
}
