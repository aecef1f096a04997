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
	slotsType = reflect.TypeOf(typeSlots{})
	numSlots  = slotsType.NumField()
)

type basisSlot struct {
	Fn func(*Object) reflect.Value
}

type callSlot struct {
	Fn func(*Frame, *Object, Args, KWArgs) (*Object, *BaseException)
}

type delAttrSlot struct {
	Fn func(*Frame, *Object, string) *BaseException
}

type deleteSlot struct {
	Fn func(*Frame, *Object, *Object) *BaseException
}

type getAttributeSlot struct {
	Fn func(*Frame, *Object, string) (*Object, *BaseException)
}

type getSlot struct {
	Fn func(*Frame, *Object, *Object, *Type) (*Object, *BaseException)
}

type nativeSlot struct {
	Fn func(*Frame, *Object) (reflect.Value, *BaseException)
}

type newSlot struct {
	Fn func(*Frame, *Type, Args, KWArgs) (*Object, *BaseException)
}

type setAttrSlot struct {
	Fn func(*Frame, *Object, string, *Object) *BaseException
}

type setSlot struct {
	Fn func(*Frame, *Object, *Object, *Object) *BaseException
}

type unaryOpSlot struct {
	Fn func(*Frame, *Object) (*Object, *BaseException)
}

// typeSlots hold the low level hooks that implement a class' behavior. A nil
// slot is inherited from the first class in the mro that sets it.
type typeSlots struct {
	Basis        *basisSlot
	Call         *callSlot
	DelAttr      *delAttrSlot
	Delete       *deleteSlot
	Get          *getSlot
	GetAttribute *getAttributeSlot
	Native       *nativeSlot
	New          *newSlot
	Repr         *unaryOpSlot
	Set          *setSlot
	SetAttr      *setAttrSlot
	Str          *unaryOpSlot
}
