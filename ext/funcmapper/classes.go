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

package funcmapper

import (
	"sync"

	"github.com/pibridge/pibridge/runtime"
)

// NewStyle is the native value behind new_style_class instances.
type NewStyle struct {
	Value *pibridge.Object `attr:"value" attr_mode:"rw"`
}

// NewStyleClass is new_style_class: a native class that callers instantiate
// directly, with one method per arity mode.
var NewStyleClass = pibridge.NewNativeClass("new_style_class", "documentation for new_style_class class", pibridge.ArityKeywords, newNewStyle)

func newNewStyle(f *pibridge.Frame, args []*pibridge.Object, kwargs map[string]*pibridge.Object) (*NewStyle, *pibridge.BaseException) {
	if raised := Calls.recordCall(f, "new_style_class", args, kwargs); raised != nil {
		return nil, raised
	}
	return &NewStyle{Value: pibridge.NewStr("default value").ToObject()}, nil
}

func newStyleNoArgs(f *pibridge.Frame, _ *NewStyle) {
	Calls.record(f, "func_noargs")
}

func newStyleVarArgs(f *pibridge.Frame, _ *NewStyle, args []*pibridge.Object) *pibridge.BaseException {
	return Calls.recordCall(f, "func_varargs", args, nil)
}

func newStyleKeyword(f *pibridge.Frame, _ *NewStyle, args []*pibridge.Object, kwargs map[string]*pibridge.Object) *pibridge.BaseException {
	return Calls.recordCall(f, "func_keyword", args, kwargs)
}

func newStyleException(f *pibridge.Frame, _ *NewStyle) error {
	Calls.record(f, "func_exception")
	return pibridge.Signal(pibridge.KindRuntime, "f0_exception::RuntimeError!!!")
}

// OldStyle is the native value behind old_style_class instances. Callers
// obtain them from the module's old_style_class factory.
type OldStyle struct {
	serial int
}

var (
	oldStyleMutex  sync.Mutex
	oldStyleSerial int
)

// OldStyleClass is old_style_class.
var OldStyleClass = pibridge.NewNativeClass("old_style_class", "documentation for old_style_class class", pibridge.ArityNone, newOldStyle)

func newOldStyle() *OldStyle {
	oldStyleMutex.Lock()
	defer oldStyleMutex.Unlock()
	oldStyleSerial++
	return &OldStyle{serial: oldStyleSerial}
}

func factoryOldStyle(f *pibridge.Frame, args []*pibridge.Object) (*OldStyle, *pibridge.BaseException) {
	if raised := Calls.recordCall(f, "factory_old_style_class", args, nil); raised != nil {
		return nil, raised
	}
	return newOldStyle(), nil
}

func oldStyleNoArgs(f *pibridge.Frame, _ *OldStyle) {
	Calls.record(f, "old_style_class.func_noargs")
}

func oldStyleVarArgs(f *pibridge.Frame, _ *OldStyle, args []*pibridge.Object) *pibridge.BaseException {
	return Calls.recordCall(f, "old_style_class.func_varargs", args, nil)
}

func oldStyleKeyword(f *pibridge.Frame, _ *OldStyle, args []*pibridge.Object, kwargs map[string]*pibridge.Object) *pibridge.BaseException {
	return Calls.recordCall(f, "old_style_class.func_keyword", args, kwargs)
}

func init() {
	NewStyleClass.Register("func_noargs", pibridge.ArityNone, newStyleNoArgs, "")
	NewStyleClass.Register("func_varargs", pibridge.ArityVarArgs, newStyleVarArgs, "docs for func_varargs")
	NewStyleClass.Register("func_keyword", pibridge.ArityKeywords, newStyleKeyword, "docs for func_keyword")
	NewStyleClass.Register("func_exception", pibridge.ArityNone, newStyleException, "docs for func_exception")

	OldStyleClass.Register("func_noargs", pibridge.ArityNone, oldStyleNoArgs, "")
	OldStyleClass.Register("func_varargs", pibridge.ArityVarArgs, oldStyleVarArgs, "")
	OldStyleClass.Register("func_keyword", pibridge.ArityKeywords, oldStyleKeyword, "")
}
