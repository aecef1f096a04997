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

	"go.uber.org/zap"
)

const (
	notBaseExceptionMsg = "exceptions must be derived from BaseException, not %q"
)

// Frame is one level of the bridge's call stack. Each invocation of a
// registered callable runs in a child of its caller's frame, and all frames
// of a stack share the exception indicator, configuration and logger of
// their root.
type Frame struct {
	*threadState
	back *Frame
	name string
}

// NewRootFrame creates a Frame that is the bottom of a new stack, using the
// default configuration and a no-op logger.
func NewRootFrame() *Frame {
	return NewRootFrameWith(nil, nil)
}

// NewRootFrameWith creates a Frame that is the bottom of a new stack. A nil
// cfg selects DefaultConfig and a nil logger discards all records.
func NewRootFrameWith(cfg *Config, logger *zap.Logger) *Frame {
	f := &Frame{}
	f.pushFrame(nil)
	if cfg != nil {
		f.config = cfg
	}
	if logger != nil {
		f.logger = logger
	}
	return f
}

// newChildFrame creates a new Frame whose parent frame is back.
func newChildFrame(back *Frame, name string) *Frame {
	f := &Frame{name: name}
	f.pushFrame(back)
	return f
}

// pushFrame adds f to the top of the stack, above back.
func (f *Frame) pushFrame(back *Frame) {
	f.back = back
	if back == nil {
		f.threadState = newThreadState()
	} else {
		f.threadState = back.threadState
	}
}

// Back returns the caller's frame, or nil for a root frame.
func (f *Frame) Back() *Frame {
	return f.back
}

// Name returns the name of the callable running in f. Root frames have an
// empty name.
func (f *Frame) Name() string {
	return f.name
}

// Config returns the configuration shared by f's stack.
func (f *Frame) Config() *Config {
	return f.config
}

// Logger returns the logger shared by f's stack.
func (f *Frame) Logger() *zap.Logger {
	return f.logger
}

// Raise creates an exception and sets the exc info indicator. typ may be an
// exception class, in which case inst (a single value, a tuple of values or
// None) supplies its arguments, or an exception instance with inst None.
// Raise returns the exception to propagate.
func (f *Frame) Raise(typ *Object, inst *Object) *BaseException {
	if typ == nil && inst == nil {
		if exc := f.ExcInfo(); exc != nil {
			typ = exc.ToObject()
		}
	}
	if typ == nil {
		typ = None
	}
	if inst == nil {
		inst = None
	}
	if typ.isInstance(TypeType) {
		t := toTypeUnsafe(typ)
		if !t.isSubclass(BaseExceptionType) {
			return f.RaiseType(TypeErrorType, fmt.Sprintf(notBaseExceptionMsg, t.Name()))
		}
		if !inst.isInstance(t) {
			var args Args
			if inst.isInstance(TupleType) {
				args = toTupleUnsafe(inst).elems
			} else if inst != None {
				args = []*Object{inst}
			}
			var raised *BaseException
			if inst, raised = typ.Call(f, args, nil); raised != nil {
				return raised
			}
		}
	} else if inst == None {
		inst = typ
	} else {
		return f.RaiseType(TypeErrorType, "instance exception may not have a separate value")
	}
	if !inst.isInstance(BaseExceptionType) {
		return f.RaiseType(TypeErrorType, fmt.Sprintf(notBaseExceptionMsg, inst.typ.Name()))
	}
	e := toBaseExceptionUnsafe(inst)
	f.RestoreExc(e)
	return e
}

// RaiseType constructs a new exception of class t carrying msg and sets it as
// the active exception.
func (f *Frame) RaiseType(t *Type, msg string) *BaseException {
	e := NewException(t, NewStr(msg).ToObject())
	f.RestoreExc(e)
	return e
}

// ExcInfo returns the exception currently being handled by f's stack.
func (f *Frame) ExcInfo() *BaseException {
	return f.threadState.excValue
}

// RestoreExc assigns the exception currently being handled by f's stack. The
// previously set value is returned.
func (f *Frame) RestoreExc(e *BaseException) *BaseException {
	f.threadState.excValue, e = e, f.threadState.excValue
	return e
}
