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
	"strconv"
)

const (
	internedIntMin = -2
	internedIntMax = 300
)

var (
	internedInts = makeInternedInts()
)

// Int is an integer value. Native integers of every width marshal to and
// from it.
type Int struct {
	Object
	value int
}

// NewInt returns a new Int holding the given integer value.
func NewInt(value int) *Int {
	if value >= internedIntMin && value <= internedIntMax {
		return &internedInts[value-internedIntMin]
	}
	return &Int{Object{typ: IntType}, value}
}

func toIntUnsafe(o *Object) *Int {
	return (*Int)(o.toPointer())
}

// ToObject upcasts i to an Object.
func (i *Int) ToObject() *Object {
	return &i.Object
}

// Value returns the underlying integer value held by i.
func (i *Int) Value() int {
	return i.value
}

// IntType is the class of integer values.
var IntType = newBasisType("int", reflect.TypeOf(Int{}), toIntUnsafe, ObjectType)

func intNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	return reflect.ValueOf(toIntUnsafe(o).Value()), nil
}

func intRepr(f *Frame, o *Object) (*Object, *BaseException) {
	return NewStr(strconv.Itoa(toIntUnsafe(o).Value())).ToObject(), nil
}

func initIntType(map[string]*Object) {
	IntType.flags &^= typeFlagInstantiable
	IntType.slots.Native = &nativeSlot{intNative}
	IntType.slots.Repr = &unaryOpSlot{intRepr}
}

func makeInternedInts() [internedIntMax - internedIntMin + 1]Int {
	var ints [internedIntMax - internedIntMin + 1]Int
	for i := internedIntMin; i <= internedIntMax; i++ {
		ints[i-internedIntMin] = Int{Object{typ: IntType}, i}
	}
	return ints
}
