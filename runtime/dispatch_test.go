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
	"testing"
)

func TestRegisterReplaces(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	first := fooType.Register("bar", ArityNone, func() int { return 1 }, "")
	fooType.Register("baz", ArityNone, func() int { return 2 }, "")
	second := fooType.Register("bar", ArityNone, func() int { return 3 }, "")
	if got := fooType.Table().Lookup("bar"); got != second || got == first {
		t.Errorf("Lookup(bar) = %v, want the second registration", got)
	}
	if got, want := fooType.Table().Names(), []string{"bar", "baz"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if second.Owner() != fooType {
		t.Errorf("Owner() = %v, want Foo", second.Owner())
	}
	foo := newObject(fooType)
	cas := invokeTestCase{want: NewInt(3).ToObject()}
	if err := runInvokeTestCase(mustNotRaise(GetAttr(NewRootFrame(), foo, "bar", nil)), &cas); err != "" {
		t.Error(err)
	}
}

func TestRegisterInvalidEntryPoint(t *testing.T) {
	oldLogFatal := logFatal
	defer func() { logFatal = oldLogFatal }()
	var msg string
	logFatal = func(m string) { msg = m }
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	if desc := fooType.Register("bar", ArityVarArgs, func(int) {}, ""); desc != nil {
		t.Errorf("Register returned %v for an invalid entry point", desc)
	}
	if want := "register Foo.bar: bar: args parameter of func(int) must be a slice, not int"; msg != want {
		t.Errorf("logFatal(%q), want %q", msg, want)
	}
	if fooType.Table().Len() != 0 {
		t.Errorf("invalid entry point was registered")
	}
}

func TestSubclassRegistrationLeavesParentAlone(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.Register("bar", ArityNone, func() string { return "Foo.bar" }, "")
	subType := newTestClass("Sub", []*Type{fooType}, NewDict())
	subType.Register("bar", ArityNone, func() string { return "Sub.bar" }, "")
	subType.Register("baz", ArityNone, func() {}, "")
	if got := fooType.Table().Names(); !reflect.DeepEqual(got, []string{"bar"}) {
		t.Errorf("Foo table = %v, want [bar]", got)
	}
	if got := fooType.LookupMethod("baz"); got != nil {
		t.Errorf("Foo.LookupMethod(baz) = %v, want nil", got)
	}
	if got := subType.LookupMethod("bar"); got.Owner() != subType {
		t.Errorf("Sub.LookupMethod(bar) owned by %v, want Sub", got.Owner())
	}
}

func TestResolve(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooDesc := fooType.Register("foo", ArityNone, func() {}, "")
	barType := newTestClass("Bar", []*Type{fooType}, NewDict())
	barDesc := barType.Register("bar", ArityNone, func() {}, "")
	bar := newObject(barType)
	f := NewRootFrame()
	cases := []struct {
		o       *Object
		name    string
		want    *CallableDescriptor
		wantExc *BaseException
	}{
		{bar, "foo", fooDesc, nil},
		{bar, "bar", barDesc, nil},
		{newObject(fooType), "bar", nil, mustCreateException(AttributeErrorType, "'Foo' object has no attribute 'bar'")},
		{bar, "qux", nil, mustCreateException(AttributeErrorType, "'Bar' object has no attribute 'qux'")},
	}
	for _, cas := range cases {
		got, raised := Resolve(f, cas.o, cas.name)
		if !exceptionsAreEquivalent(raised, cas.wantExc) {
			t.Errorf("Resolve(%v, %q) raised %v, want %v", cas.o, cas.name, raised, cas.wantExc)
		} else if got != cas.want {
			t.Errorf("Resolve(%v, %q) = %v, want %v", cas.o, cas.name, got, cas.want)
		}
	}
}

func TestResolveFrom(t *testing.T) {
	aType := newTestClass("A", []*Type{ObjectType}, NewDict())
	aDesc := aType.Register("who", ArityNone, func() string { return "A" }, "")
	bType := newTestClass("B", []*Type{aType}, NewDict())
	bDesc := bType.Register("who", ArityNone, func() string { return "B" }, "")
	cType := newTestClass("C", []*Type{bType}, NewDict())
	cType.Register("who", ArityNone, func() string { return "C" }, "")
	c := newObject(cType)
	f := NewRootFrame()
	cases := []struct {
		start   *Type
		want    *CallableDescriptor
		wantExc *BaseException
	}{
		{cType, bDesc, nil},
		{bType, aDesc, nil},
		{aType, nil, mustCreateException(AttributeErrorType, "'super' object has no attribute 'who'")},
		{IntType, nil, mustCreateException(TypeErrorType, "super(type, obj): obj must be an instance or subtype of type")},
	}
	for _, cas := range cases {
		got, raised := ResolveFrom(f, cas.start, c, "who")
		if !exceptionsAreEquivalent(raised, cas.wantExc) {
			t.Errorf("ResolveFrom(%s) raised %v, want %v", cas.start.Name(), raised, cas.wantExc)
		} else if got != cas.want {
			t.Errorf("ResolveFrom(%s) = %v, want %v", cas.start.Name(), got, cas.want)
		}
	}
}

// describeChain builds A <- B <- C where every override of describe appends
// its class name to what the overridden implementation returns.
func describeChain() (aType, bType, cType *Type) {
	aType = newTestClass("A", []*Type{ObjectType}, NewDict())
	aType.Register("describe", ArityNone, func(*Object) string { return "A" }, "")
	bType = newTestClass("B", []*Type{aType}, NewDict())
	cType = newTestClass("C", []*Type{bType}, NewDict())
	for _, t := range []*Type{bType, cType} {
		t := t
		t.RegisterFunc("describe", func(f *Frame, args Args, kwargs KWArgs) (*Object, *BaseException) {
			s, raised := Super(f, t, args[0], "describe", nil, nil)
			if raised != nil {
				return nil, raised
			}
			return NewStr(toStrUnsafe(s).Value() + t.Name()).ToObject(), nil
		}, "")
	}
	return aType, bType, cType
}

func TestSuperChain(t *testing.T) {
	aType, bType, cType := describeChain()
	cases := []struct {
		t    *Type
		want string
	}{
		{aType, "A"},
		{bType, "AB"},
		{cType, "ABC"},
	}
	for _, cas := range cases {
		call := invokeTestCase{args: wrapArgs(newObject(cas.t)), want: NewStr(cas.want).ToObject()}
		if err := runInvokeMethodTestCase(cas.t, "describe", &call); err != "" {
			t.Error(err)
		}
	}
	for _, cas := range cases {
		o := newObject(cas.t)
		got, raised := CallMethod(NewRootFrame(), o, "describe", nil, nil)
		if raised != nil {
			t.Errorf("%s().describe() raised %v", cas.t.Name(), raised)
		} else if s := toStrUnsafe(got).Value(); s != cas.want {
			t.Errorf("%s().describe() = %q, want %q", cas.t.Name(), s, cas.want)
		}
	}
}

func TestLookupFunction(t *testing.T) {
	m := NewModule("lookup_function", "")
	desc := m.Register("foo", ArityNone, func() {}, "")
	f := NewRootFrame()
	if got, raised := LookupFunction(f, m, "foo"); raised != nil || got != desc {
		t.Errorf("LookupFunction(foo) = %v, %v, want %v", got, raised, desc)
	}
	wantExc := mustCreateException(AttributeErrorType, "'module' object 'lookup_function' has no attribute 'bar'")
	if _, raised := LookupFunction(f, m, "bar"); !exceptionsAreEquivalent(raised, wantExc) {
		t.Errorf("LookupFunction(bar) raised %v, want %v", raised, wantExc)
	}
}

func TestConcurrentRegisterAndResolve(t *testing.T) {
	fooType := newTestClass("Foo", []*Type{ObjectType}, NewDict())
	fooType.Register("base", ArityNone, func() int { return 0 }, "")
	foo := newObject(fooType)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				fooType.Register(fmt.Sprintf("m%d_%d", i, j), ArityNone, func() int { return j }, "")
			}
		}(i)
		go func() {
			defer wg.Done()
			f := NewRootFrame()
			for j := 0; j < 50; j++ {
				if _, raised := CallMethod(f, foo, "base", nil, nil); raised != nil {
					t.Errorf("base() raised %v", raised)
					return
				}
			}
		}()
	}
	wg.Wait()
	if got, want := fooType.Table().Len(), 1+8*50; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}
