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

func TestNewIntInterned(t *testing.T) {
	if NewInt(7) != NewInt(7) {
		t.Errorf("small ints are not interned")
	}
	if NewInt(100000) == NewInt(100000) {
		t.Errorf("large ints are interned")
	}
	if got := NewInt(-5).Value(); got != -5 {
		t.Errorf("NewInt(-5).Value() = %d", got)
	}
}

func TestIntRepr(t *testing.T) {
	cases := []invokeTestCase{
		{args: wrapArgs(0), want: NewStr("0").ToObject()},
		{args: wrapArgs(-42), want: NewStr("-42").ToObject()},
		{args: wrapArgs(1 << 40), want: NewStr("1099511627776").ToObject()},
	}
	for _, cas := range cases {
		if err := runInvokeTestCase(wrapFuncForTest(Repr), &cas); err != "" {
			t.Error(err)
		}
	}
}

func TestBool(t *testing.T) {
	cases := []invokeTestCase{
		{args: wrapArgs(true), want: NewStr("True").ToObject()},
		{args: wrapArgs(false), want: NewStr("False").ToObject()},
	}
	for _, cas := range cases {
		if err := runInvokeTestCase(wrapFuncForTest(Repr), &cas); err != "" {
			t.Error(err)
		}
	}
	if GetBool(true) != True || GetBool(false) != False {
		t.Errorf("GetBool does not return the singletons")
	}
	f := NewRootFrame()
	if v, raised := ToNative(f, True.ToObject()); raised != nil || v.Interface() != true {
		t.Errorf("ToNative(True) = %v, %v", v, raised)
	}
	wantExc := mustCreateException(TypeConversionErrorType, "an int is required (got bool)")
	if _, raised := maybeConvertValue(f, True.ToObject(), reflect.TypeOf(0)); !exceptionsAreEquivalent(raised, wantExc) {
		t.Errorf("maybeConvertValue(True, int) raised %v, want %v", raised, wantExc)
	}
}
