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
	"github.com/pibridge/pibridge/runtime"
)

// newDerivedClass builds Derived, a class defined at run time on top of
// base. It overrides func_noargs, reaches the inherited one through
// derived_func and initializes its native part by super-calling __init__.
func newDerivedClass(f *pibridge.Frame, base *pibridge.Type) (*pibridge.Type, *pibridge.BaseException) {
	var derived *pibridge.Type
	dict := pibridge.NewDict()
	dict.SetItem("__doc__", pibridge.NewStr("Derived subclass of new_style_class.").ToObject())
	dict.SetItem("__init__", pibridge.NewFunction("__init__", "", func(f *pibridge.Frame, args pibridge.Args, kwargs pibridge.KWArgs) (*pibridge.Object, *pibridge.BaseException) {
		Calls.record(f, "Derived.__init__")
		return pibridge.Super(f, derived, args[0], "__init__", args[1:], kwargs)
	}).ToObject())
	dict.SetItem("derived_func", pibridge.NewFunction("derived_func", "Calls the inherited func_noargs.", func(f *pibridge.Frame, args pibridge.Args, kwargs pibridge.KWArgs) (*pibridge.Object, *pibridge.BaseException) {
		Calls.record(f, "derived_func")
		return pibridge.Super(f, derived, args[0], "func_noargs", nil, nil)
	}).ToObject())
	dict.SetItem("func_noargs", pibridge.NewFunction("func_noargs", "", func(f *pibridge.Frame, args pibridge.Args, kwargs pibridge.KWArgs) (*pibridge.Object, *pibridge.BaseException) {
		if len(args) != 1 || len(kwargs) != 0 {
			return nil, f.RaiseType(pibridge.ArityErrorType, "func_noargs() takes no arguments")
		}
		Calls.record(f, "derived func_noargs")
		return pibridge.None, nil
	}).ToObject())
	var raised *pibridge.BaseException
	derived, raised = pibridge.NewClass(f, "Derived", []*pibridge.Type{base}, dict)
	return derived, raised
}
