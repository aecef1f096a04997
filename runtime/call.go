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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// callState is a step of the call state machine. Every call moves through
// received, resolved, marshalled and invoked and ends either returned or
// raised; any step may jump straight to raised.
type callState int

const (
	callReceived callState = iota
	callResolved
	callMarshalled
	callInvoked
	callReturned
	callRaised
)

var callStateNames = [...]string{"RECEIVED", "RESOLVED", "MARSHALLED", "INVOKED", "RETURNED", "RAISED"}

func (s callState) String() string {
	if s < 0 || int(s) >= len(callStateNames) {
		return fmt.Sprintf("callState(%d)", int(s))
	}
	return callStateNames[s]
}

const unknownExceptionMsg = "Unknown exception in call-handler"

// CallFrame is the per call record of a dispatch: the target, the arguments
// as the caller supplied them and, when tracing is enabled, an ID that
// correlates the call's log records.
type CallFrame struct {
	ID     uuid.UUID
	Name   string
	Target *Object
	Args   Args
	KWArgs KWArgs
}

func newCallFrame(f *Frame, name string, target *Object, args Args, kwargs KWArgs) *CallFrame {
	cf := &CallFrame{Name: name, Target: target, Args: args, KWArgs: kwargs}
	if f.config.TraceCalls {
		cf.ID = uuid.New()
	}
	return cf
}

func (cf *CallFrame) trace(f *Frame, state callState, fields ...zap.Field) {
	if !f.config.TraceCalls {
		return
	}
	base := []zap.Field{
		zap.Stringer("call_id", cf.ID),
		zap.String("name", cf.Name),
		zap.Stringer("state", state),
	}
	f.logger.Debug("call", append(base, fields...)...)
}

func (cf *CallFrame) fail(f *Frame, raised *BaseException) *BaseException {
	cf.trace(f, callRaised, zap.String("exception", raised.typ.Name()), zap.String("message", raised.Message()))
	return raised
}

// CallMethod performs target.name(*args, **kwargs): the callable is resolved
// through target's class and mro, the arguments are marshalled for its entry
// point and the result is marshalled back.
func CallMethod(f *Frame, target *Object, name string, args Args, kwargs KWArgs) (*Object, *BaseException) {
	cf := newCallFrame(f, name, target, args, kwargs)
	cf.trace(f, callReceived)
	desc, raised := Resolve(f, target, name)
	if raised != nil {
		return nil, cf.fail(f, raised)
	}
	return invoke(f, cf, desc)
}

// Invoke calls an already resolved callable on target.
func Invoke(f *Frame, desc *CallableDescriptor, target *Object, args Args, kwargs KWArgs) (*Object, *BaseException) {
	return invoke(f, newCallFrame(f, desc.name, target, args, kwargs), desc)
}

// CallFunction calls the module level function name of m.
func CallFunction(f *Frame, m *Module, name string, args Args, kwargs KWArgs) (*Object, *BaseException) {
	cf := newCallFrame(f, name, m.ToObject(), args, kwargs)
	cf.trace(f, callReceived)
	desc, raised := LookupFunction(f, m, name)
	if raised != nil {
		return nil, cf.fail(f, raised)
	}
	return invoke(f, cf, desc)
}

func invoke(f *Frame, cf *CallFrame, desc *CallableDescriptor) (*Object, *BaseException) {
	cf.trace(f, callResolved, zap.Stringer("mode", desc.mode))
	if limit := f.config.MaxCallDepth; limit > 0 && f.depth >= limit {
		format := "maximum call depth exceeded while calling %s"
		return nil, cf.fail(f, f.RaiseType(RuntimeErrorType, fmt.Sprintf(format, desc.qualifiedName())))
	}
	f.depth++
	defer func() { f.depth-- }()
	child := newChildFrame(f, desc.name)
	var ret *Object
	var raised *BaseException
	if desc.dyn != nil {
		args := make(Args, len(cf.Args)+1)
		args[0] = cf.Target
		copy(args[1:], cf.Args)
		cf.trace(f, callMarshalled)
		cf.trace(f, callInvoked)
		ret, raised = callDynamic(child, desc, args, cf.KWArgs)
	} else {
		ret, raised = invokeNative(f, child, cf, desc)
	}
	if raised != nil {
		return nil, cf.fail(f, raised)
	}
	cf.trace(f, callReturned)
	return ret, nil
}

func invokeNative(f, child *Frame, cf *CallFrame, desc *CallableDescriptor) (*Object, *BaseException) {
	in, raised := marshalIn(f, child, cf, desc)
	if raised != nil {
		return nil, raised
	}
	cf.trace(f, callMarshalled)
	cf.trace(f, callInvoked)
	results, raised := callNative(child, desc, in)
	if raised != nil {
		return nil, raised
	}
	if desc.ctor {
		return storeNative(f, desc, cf.Target, results)
	}
	return marshalOut(f, desc, results)
}

func callNative(f *Frame, desc *CallableDescriptor, in []reflect.Value) (results []reflect.Value, raised *BaseException) {
	if f.config.TrapPanics {
		defer func() {
			if r := recover(); r != nil {
				raised = trappedPanic(f, desc, r)
			}
		}()
	}
	if desc.sig.variadic {
		return desc.fn.CallSlice(in), nil
	}
	return desc.fn.Call(in), nil
}

func callDynamic(f *Frame, desc *CallableDescriptor, args Args, kwargs KWArgs) (ret *Object, raised *BaseException) {
	if f.config.TrapPanics {
		defer func() {
			if r := recover(); r != nil {
				ret, raised = nil, trappedPanic(f, desc, r)
			}
		}()
	}
	ret, raised = desc.dyn(f, args, kwargs)
	if raised == nil && ret == nil {
		ret = None
	}
	return ret, raised
}

func trappedPanic(f *Frame, desc *CallableDescriptor, r interface{}) *BaseException {
	f.logger.Error("panic in call handler", zap.String("name", desc.name), zap.Any("panic", r))
	return f.RaiseType(RuntimeErrorType, unknownExceptionMsg)
}

// storeNative installs the value produced by a native class constructor as
// target's native value.
func storeNative(f *Frame, desc *CallableDescriptor, target *Object, results []reflect.Value) (*Object, *BaseException) {
	if desc.sig.errResult {
		if raised := resultError(f, results[len(results)-1]); raised != nil {
			return nil, raised
		}
	}
	if target == nil || target.typ.basis != nativeBasis || (desc.owner != nil && !target.isInstance(desc.owner)) {
		owner := "?"
		if desc.owner != nil {
			owner = desc.owner.Name()
		}
		typeName := "nothing"
		if target != nil {
			typeName = target.typ.Name()
		}
		format := "descriptor '__init__' requires a '%s' object but received a '%s'"
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf(format, owner, typeName))
	}
	v := results[0]
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, f.RaiseType(RuntimeErrorType, fmt.Sprintf("%s constructor returned nil", desc.owner.Name()))
		}
	}
	toNativeUnsafe(target).value = v
	return None, nil
}
