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
)

var (
	// False is the singleton false value.
	False = &Int{Object{typ: BoolType}, 0}
	// True is the singleton true value.
	True = &Int{Object{typ: BoolType}, 1}
)

// GetBool returns True if v is true, False otherwise.
func GetBool(v bool) *Int {
	if v {
		return True
	}
	return False
}

// BoolType is the class of True and False.
var BoolType = newSimpleType("bool", IntType)

func boolNative(_ *Frame, o *Object) (reflect.Value, *BaseException) {
	return reflect.ValueOf(toIntUnsafe(o).Value() != 0), nil
}

func boolRepr(_ *Frame, o *Object) (*Object, *BaseException) {
	if toIntUnsafe(o).Value() != 0 {
		return NewStr("True").ToObject(), nil
	}
	return NewStr("False").ToObject(), nil
}

func initBoolType(map[string]*Object) {
	BoolType.flags &= ^(typeFlagInstantiable | typeFlagBasetype)
	BoolType.slots.Native = &nativeSlot{boolNative}
	BoolType.slots.Repr = &unaryOpSlot{boolRepr}
}
