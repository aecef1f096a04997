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
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Float is a double precision floating point value.
type Float struct {
	Object
	value float64
}

// NewFloat returns a new Float holding the given floating point value.
func NewFloat(value float64) *Float {
	return &Float{Object{typ: FloatType}, value}
}

func toFloatUnsafe(o *Object) *Float {
	return (*Float)(o.toPointer())
}

// ToObject upcasts x to an Object.
func (x *Float) ToObject() *Object {
	return &x.Object
}

// Value returns the underlying floating point value held by x.
func (x *Float) Value() float64 {
	return x.value
}

// FloatType is the class of floating point values.
var FloatType = newBasisType("float", reflect.TypeOf(Float{}), toFloatUnsafe, ObjectType)

func floatNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	return reflect.ValueOf(toFloatUnsafe(o).Value()), nil
}

func floatRepr(f *Frame, o *Object) (*Object, *BaseException) {
	return NewStr(floatToString(toFloatUnsafe(o).Value())).ToObject(), nil
}

func initFloatType(map[string]*Object) {
	FloatType.flags &^= typeFlagInstantiable
	FloatType.slots.Native = &nativeSlot{floatNative}
	FloatType.slots.Repr = &unaryOpSlot{floatRepr}
}

// floatToString formats x so that integral values keep a trailing ".0",
// e.g. 3.0 rather than 3.
func floatToString(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "nan"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
