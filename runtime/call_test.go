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
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newCallTestClass returns a class with one callable per arity mode and a
// few that exercise the error paths.
func newCallTestClass() *Type {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.Register("noargs", ArityNone, func(*Object) string { return "noargs" }, "")
	fooType.Register("varargs", ArityVarArgs, func(_ *Object, args []int) int {
		sum := 0
		for _, arg := range args {
			sum += arg
		}
		return sum
	}, "")
	fooType.Register("keywords", ArityKeywords, func(args []interface{}, kwargs map[string]interface{}) (int, int) {
		return len(args), len(kwargs)
	}, "")
	fooType.Register("small", ArityVarArgs, func(args []int8) int { return len(args) }, "")
	fooType.Register("signal", ArityNone, func() error { return Signal(KindValue, "bad value %d", 3) }, "")
	fooType.Register("plain", ArityNone, func() error { return errors.New("plain failure") }, "")
	fooType.Register("raise", ArityNone, func(f *Frame) *BaseException { return f.RaiseType(KeyErrorType, "k") }, "")
	fooType.Register("wrapped", ArityNone, func(f *Frame) error {
		return fmt.Errorf("context: %w", f.RaiseType(IndexErrorType, "idx"))
	}, "")
	fooType.Register("typednil", ArityNone, func() error {
		var e *BaseException
		return e
	}, "")
	fooType.Register("pair", ArityNone, func() (int, string, error) { return 1, "a", nil }, "")
	fooType.Register("boom", ArityNone, func() { panic("boom") }, "")
	return fooType
}

func TestCallMethod(t *testing.T) {
	foo := newObject(newCallTestClass())
	cases := []struct {
		name string
		invokeTestCase
	}{
		{"noargs", invokeTestCase{want: NewStr("noargs").ToObject()}},
		{"noargs", invokeTestCase{args: wrapArgs(1, 2), wantExc: mustCreateException(ArityErrorType, "noargs() takes no arguments (2 given)")}},
		{"noargs", invokeTestCase{kwargs: wrapKWArgs("a", 1), wantExc: mustCreateException(ArityErrorType, "noargs() takes no arguments (1 given)")}},
		{"varargs", invokeTestCase{want: NewInt(0).ToObject()}},
		{"varargs", invokeTestCase{args: wrapArgs(1, 2, 3), want: NewInt(6).ToObject()}},
		{"varargs", invokeTestCase{args: wrapArgs(1), kwargs: wrapKWArgs("x", 2), wantExc: mustCreateException(KeywordNotSupportedErrorType, "varargs() takes no keyword arguments")}},
		{"varargs", invokeTestCase{args: wrapArgs(1, "a"), wantExc: mustCreateException(TypeConversionErrorType, "varargs() argument 2: an int is required (got str)")}},
		{"varargs", invokeTestCase{args: wrapArgs(1.5), wantExc: mustCreateException(TypeConversionErrorType, "varargs() argument 1: an int is required (got float)")}},
		{"keywords", invokeTestCase{want: NewTuple(wrapArgs(0, 0)...).ToObject()}},
		{"keywords", invokeTestCase{args: wrapArgs(1, "a"), kwargs: wrapKWArgs("x", 2), want: NewTuple(wrapArgs(2, 1)...).ToObject()}},
		{"keywords", invokeTestCase{kwargs: wrapKWArgs("x", 2, "x", 3), wantExc: mustCreateException(TypeErrorType, "keywords(): got multiple values for keyword argument 'x'")}},
		{"small", invokeTestCase{args: wrapArgs(1, 127), want: NewInt(2).ToObject()}},
		{"small", invokeTestCase{args: wrapArgs(300), wantExc: mustCreateException(TypeConversionErrorType, "small() argument 1: 300 does not fit in int8")}},
		{"signal", invokeTestCase{wantExc: mustCreateException(ValueErrorType, "bad value 3")}},
		{"plain", invokeTestCase{wantExc: mustCreateException(RuntimeErrorType, "plain failure")}},
		{"raise", invokeTestCase{wantExc: mustCreateException(KeyErrorType, "k")}},
		{"wrapped", invokeTestCase{wantExc: mustCreateException(IndexErrorType, "idx")}},
		{"typednil", invokeTestCase{want: None}},
		{"pair", invokeTestCase{want: NewTuple(wrapArgs(1, "a")...).ToObject()}},
		{"boom", invokeTestCase{wantExc: mustCreateException(RuntimeErrorType, "Unknown exception in call-handler")}},
		{"missing", invokeTestCase{wantExc: mustCreateException(AttributeErrorType, "'Foo' object has no attribute 'missing'")}},
	}
	for _, cas := range cases {
		got, raised := CallMethod(NewRootFrame(), foo, cas.name, cas.args, cas.kwargs)
		if msg := checkResult(got, cas.want, raised, cas.wantExc); msg != "" {
			t.Errorf("foo.%s%v %v %s", cas.name, cas.args, cas.kwargs, msg)
		}
	}
}

func TestCallMethodBoundAndUnbound(t *testing.T) {
	fooType := newCallTestClass()
	foo := newObject(fooType)
	f := NewRootFrame()
	bound := mustNotRaise(GetAttr(f, foo, "varargs", nil))
	cas := invokeTestCase{args: wrapArgs(4, 5), want: NewInt(9).ToObject()}
	if err := runInvokeTestCase(bound, &cas); err != "" {
		t.Error(err)
	}
	cas = invokeTestCase{args: wrapArgs(foo, 4, 5), want: NewInt(9).ToObject()}
	if err := runInvokeMethodTestCase(fooType, "varargs", &cas); err != "" {
		t.Error(err)
	}
}

func TestCallMethodOutOfRangeIsConversionError(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.Register("bytes", ArityVarArgs, func(args []uint8) int { return len(args) }, "")
	foo := newObject(fooType)
	cases := []struct {
		arg  int
		want string
	}{
		{300, "bytes() argument 1: 300 does not fit in uint8"},
		{-1, "bytes() argument 1: -1 does not fit in uint8"},
	}
	for _, cas := range cases {
		_, raised := CallMethod(NewRootFrame(), foo, "bytes", wrapArgs(cas.arg), nil)
		if raised == nil {
			t.Errorf("foo.bytes(%d) did not raise", cas.arg)
			continue
		}
		if !IsInstance(raised.ToObject(), TypeConversionErrorType) {
			t.Errorf("foo.bytes(%d) raised %s, want a TypeConversionError", cas.arg, raised.typ.Name())
		}
		if msg := checkResult(nil, nil, raised, mustCreateException(TypeConversionErrorType, cas.want)); msg != "" {
			t.Errorf("foo.bytes(%d) %s", cas.arg, msg)
		}
	}
}

func TestCallMethodLenientNoArgs(t *testing.T) {
	foo := newObject(newCallTestClass())
	cfg := DefaultConfig()
	cfg.StrictNoArgs = false
	f := NewRootFrameWith(cfg, nil)
	got, raised := CallMethod(f, foo, "noargs", wrapArgs(1, 2), wrapKWArgs("a", 3))
	if msg := checkResult(got, NewStr("noargs").ToObject(), raised, nil); msg != "" {
		t.Errorf("noargs(1, 2, a=3) %s", msg)
	}
}

func TestCallMethodUntrappedPanic(t *testing.T) {
	foo := newObject(newCallTestClass())
	cfg := DefaultConfig()
	cfg.TrapPanics = false
	f := NewRootFrameWith(cfg, nil)
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v, want boom", r)
		}
	}()
	CallMethod(f, foo, "boom", nil, nil)
	t.Errorf("boom() returned without panicking")
}

func TestCallMethodDynamicPanic(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.RegisterFunc("boom", func(*Frame, Args, KWArgs) (*Object, *BaseException) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	}, "")
	core, logs := observer.New(zapcore.ErrorLevel)
	f := NewRootFrameWith(nil, zap.New(core))
	got, raised := CallMethod(f, newObject(fooType), "boom", nil, nil)
	if msg := checkResult(got, nil, raised, mustCreateException(RuntimeErrorType, unknownExceptionMsg)); msg != "" {
		t.Errorf("boom() %s", msg)
	}
	entries := logs.FilterMessage("panic in call handler").All()
	if len(entries) != 1 || entries[0].ContextMap()["name"] != "boom" {
		t.Errorf("panic log = %v, want one record naming boom", entries)
	}
}

func TestCallMethodDynamicNilResult(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.RegisterFunc("nothing", func(*Frame, Args, KWArgs) (*Object, *BaseException) { return nil, nil }, "")
	got, raised := CallMethod(NewRootFrame(), newObject(fooType), "nothing", nil, nil)
	if msg := checkResult(got, None, raised, nil); msg != "" {
		t.Errorf("nothing() %s", msg)
	}
}

func TestCallMethodDepthLimit(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	calls := 0
	fooType.RegisterFunc("recurse", func(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
		calls++
		return CallMethod(f, args[0], "recurse", nil, nil)
	}, "")
	cfg := DefaultConfig()
	cfg.MaxCallDepth = 10
	f := NewRootFrameWith(cfg, nil)
	got, raised := CallMethod(f, newObject(fooType), "recurse", nil, nil)
	wantExc := mustCreateException(RuntimeErrorType, "maximum call depth exceeded while calling recurse()")
	if msg := checkResult(got, nil, raised, wantExc); msg != "" {
		t.Errorf("recurse() %s", msg)
	}
	if calls != 10 {
		t.Errorf("recurse ran %d times, want 10", calls)
	}
	if f.depth != 0 {
		t.Errorf("depth after call = %d, want 0", f.depth)
	}
}

func TestCallMethodTrace(t *testing.T) {
	foo := newObject(newCallTestClass())
	cases := []struct {
		name       string
		args       Args
		wantStates []string
	}{
		{"noargs", nil, []string{"RECEIVED", "RESOLVED", "MARSHALLED", "INVOKED", "RETURNED"}},
		{"noargs", wrapArgs(1), []string{"RECEIVED", "RESOLVED", "RAISED"}},
		{"signal", nil, []string{"RECEIVED", "RESOLVED", "MARSHALLED", "INVOKED", "RAISED"}},
		{"missing", nil, []string{"RECEIVED", "RAISED"}},
	}
	for _, cas := range cases {
		core, logs := observer.New(zapcore.DebugLevel)
		cfg := DefaultConfig()
		cfg.TraceCalls = true
		f := NewRootFrameWith(cfg, zap.New(core))
		CallMethod(f, foo, cas.name, cas.args, nil)
		var states []string
		ids := map[interface{}]bool{}
		for _, entry := range logs.FilterMessage("call").All() {
			fields := entry.ContextMap()
			states = append(states, fields["state"].(string))
			ids[fields["call_id"]] = true
			if fields["name"] != cas.name {
				t.Errorf("%s%v: record names %v", cas.name, cas.args, fields["name"])
			}
		}
		if !reflect.DeepEqual(states, cas.wantStates) {
			t.Errorf("%s%v: states = %v, want %v", cas.name, cas.args, states, cas.wantStates)
		}
		if len(ids) != 1 {
			t.Errorf("%s%v: records carry %d call ids, want 1", cas.name, cas.args, len(ids))
		}
	}
}

func TestCallMethodTraceDisabled(t *testing.T) {
	foo := newObject(newCallTestClass())
	core, logs := observer.New(zapcore.DebugLevel)
	f := NewRootFrameWith(nil, zap.New(core))
	CallMethod(f, foo, "noargs", nil, nil)
	if n := logs.Len(); n != 0 {
		t.Errorf("logged %d records with tracing off", n)
	}
}

func TestCallFunction(t *testing.T) {
	m := NewModule("call_function", "")
	m.Register("add", ArityVarArgs, func(args ...int) int {
		sum := 0
		for _, arg := range args {
			sum += arg
		}
		return sum
	}, "")
	m.Register("name", ArityNone, func(m *Module) string { return m.Name() }, "")
	cases := []struct {
		name string
		invokeTestCase
	}{
		{"add", invokeTestCase{args: wrapArgs(1, 2, 3), want: NewInt(6).ToObject()}},
		{"name", invokeTestCase{want: NewStr("call_function").ToObject()}},
		{"nope", invokeTestCase{wantExc: mustCreateException(AttributeErrorType, "'module' object 'call_function' has no attribute 'nope'")}},
	}
	for _, cas := range cases {
		got, raised := CallFunction(NewRootFrame(), m, cas.name, cas.args, cas.kwargs)
		if msg := checkResult(got, cas.want, raised, cas.wantExc); msg != "" {
			t.Errorf("%s%v %s", cas.name, cas.args, msg)
		}
	}
}

func TestCallStateString(t *testing.T) {
	if got := callMarshalled.String(); got != "MARSHALLED" {
		t.Errorf("callMarshalled.String() = %q", got)
	}
	if got := callState(42).String(); got != "callState(42)" {
		t.Errorf("callState(42).String() = %q", got)
	}
}
