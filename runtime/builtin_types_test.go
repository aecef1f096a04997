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
	"testing"
)

func TestBuiltinFuncs(t *testing.T) {
	f := NewRootFrame()
	fooType := newTestClass("Foo", []*Type{ObjectType}, newStringDict(map[string]*Object{"bar": None}))
	foo := newObject(fooType)
	if raised := SetAttr(f, foo, "baz", None); raised != nil {
		t.Fatal(raised)
	}
	fooDir := make([]*Object, 0)
	for _, name := range Dir(f, foo) {
		fooDir = append(fooDir, NewStr(name).ToObject())
	}
	cases := []struct {
		f       string
		args    Args
		want    *Object
		wantExc *BaseException
	}{
		{f: "dir", args: wrapArgs(foo), want: NewTuple(fooDir...).ToObject()},
		{f: "dir", args: wrapArgs(), wantExc: mustCreateException(TypeErrorType, "'dir' requires 1 arguments")},
		{f: "getattr", args: wrapArgs(foo, "bar"), want: None},
		{f: "getattr", args: wrapArgs(foo, "baz"), want: None},
		{f: "getattr", args: wrapArgs(foo, "qux"), wantExc: mustCreateException(AttributeErrorType, "'Foo' object has no attribute 'qux'")},
		{f: "getattr", args: wrapArgs(foo, "qux", 42), want: NewInt(42).ToObject()},
		{f: "getattr", args: wrapArgs(foo, 3), wantExc: mustCreateException(TypeErrorType, `'getattr' requires a 'str' object but received a "int"`)},
		{f: "getattr", args: wrapArgs(foo), wantExc: mustCreateException(TypeErrorType, "'getattr' requires 3 arguments")},
		{f: "hasattr", args: wrapArgs(foo, "baz"), want: True.ToObject()},
		{f: "hasattr", args: wrapArgs(foo, "bar"), want: True.ToObject()},
		{f: "hasattr", args: wrapArgs(foo, "qux"), want: False.ToObject()},
		{f: "hasattr", args: wrapArgs(fooType, "bar"), want: True.ToObject()},
		{f: "isinstance", args: wrapArgs(foo, fooType), want: True.ToObject()},
		{f: "isinstance", args: wrapArgs(foo, ObjectType), want: True.ToObject()},
		{f: "isinstance", args: wrapArgs(true, IntType), want: True.ToObject()},
		{f: "isinstance", args: wrapArgs(1, StrType), want: False.ToObject()},
		{f: "isinstance", args: wrapArgs(1, 2), wantExc: mustCreateException(TypeErrorType, `'isinstance' requires a 'type' object but received a "int"`)},
		{f: "repr", args: wrapArgs(None), want: NewStr("None").ToObject()},
		{f: "repr", args: wrapArgs("a"), want: NewStr("'a'").ToObject()},
		{f: "repr", args: wrapArgs(NewTuple(True.ToObject(), False.ToObject())), want: NewStr("(True, False)").ToObject()},
		{f: "repr", args: wrapArgs(1, 2), wantExc: mustCreateException(TypeErrorType, "'repr' requires 1 arguments")},
		{f: "setattr", args: wrapArgs(foo, "qux", 3), want: None},
		{f: "setattr", args: wrapArgs(foo, "qux"), wantExc: mustCreateException(TypeErrorType, "'setattr' requires 3 arguments")},
	}
	for _, cas := range cases {
		fun := Builtins.GetItem(cas.f)
		if fun == nil {
			t.Errorf("%s is not a builtin", cas.f)
			continue
		}
		testCase := invokeTestCase{args: cas.args, want: cas.want, wantExc: cas.wantExc}
		if err := runInvokeTestCase(fun, &testCase); err != "" {
			t.Error(err)
		}
	}
	if got := foo.Dict().GetItem("qux"); got != NewInt(3).ToObject() {
		t.Errorf("foo.qux = %v after setattr, want 3", got)
	}
}

func TestDirIncludesInheritedNames(t *testing.T) {
	f := NewRootFrame()
	base := newTestClass("Base", []*Type{ObjectType}, newStringDict(map[string]*Object{"inherited": None}))
	sub := newTestClass("Sub", []*Type{base}, newStringDict(map[string]*Object{"own": None}))
	o := newObject(sub)
	if raised := SetAttr(f, o, "local", None); raised != nil {
		t.Fatal(raised)
	}
	names := map[string]bool{}
	for _, name := range Dir(f, o) {
		names[name] = true
	}
	for _, want := range []string{"inherited", "own", "local"} {
		if !names[want] {
			t.Errorf("dir(o) = %v, missing %q", Dir(f, o), want)
		}
	}
	typeNames := Dir(f, sub.ToObject())
	for _, name := range typeNames {
		if name == "local" {
			t.Errorf("dir(Sub) = %v, includes instance attribute", typeNames)
		}
	}
	if !reflect.DeepEqual(typeNames, Dir(f, sub.ToObject())) {
		t.Errorf("dir(Sub) is not deterministic")
	}
}

func TestBuiltinGlobals(t *testing.T) {
	for _, name := range []string{"None", "True", "False", "object", "type", "int", "str", "tuple", "dict", "RuntimeError", "TypeConversionError"} {
		if Builtins.GetItem(name) == nil {
			t.Errorf("Builtins is missing %q", name)
		}
	}
	if Builtins.GetItem("function") != nil {
		t.Errorf("Builtins exposes the function class")
	}
}

func TestNoneRepr(t *testing.T) {
	if s := None.String(); s != "None" {
		t.Errorf("None.String() = %q, want None", s)
	}
}
