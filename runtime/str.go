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
	"bytes"
	"fmt"
	"reflect"
	"unicode"
)

var (
	escapeMap = map[rune]string{
		'\\': `\\`,
		'\'': `\'`,
		'\n': `\n`,
		'\r': `\r`,
		'\t': `\t`,
	}
)

// Str is an immutable byte string.
type Str struct {
	Object
	value string
}

// NewStr returns a new Str holding the given string value.
func NewStr(value string) *Str {
	return &Str{Object{typ: StrType}, value}
}

func toStrUnsafe(o *Object) *Str {
	return (*Str)(o.toPointer())
}

// ToObject upcasts s to an Object.
func (s *Str) ToObject() *Object {
	return &s.Object
}

// Value returns the underlying string value held by s.
func (s *Str) Value() string {
	return s.value
}

// StrType is the class of string values.
var StrType = newBasisType("str", reflect.TypeOf(Str{}), toStrUnsafe, ObjectType)

func strNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	return reflect.ValueOf(toStrUnsafe(o).Value()), nil
}

func strRepr(_ *Frame, o *Object) (*Object, *BaseException) {
	s := toStrUnsafe(o).Value()
	buf := bytes.Buffer{}
	buf.WriteRune('\'')
	numBytes := len(s)
	for i := 0; i < numBytes; i++ {
		r := rune(s[i])
		if escape, ok := escapeMap[r]; ok {
			buf.WriteString(escape)
		} else if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			buf.WriteString(fmt.Sprintf(`\x%02x`, r))
		} else {
			buf.WriteRune(r)
		}
	}
	buf.WriteRune('\'')
	return NewStr(buf.String()).ToObject(), nil
}

func strStr(_ *Frame, o *Object) (*Object, *BaseException) {
	return o, nil
}

func initStrType(map[string]*Object) {
	StrType.flags &^= typeFlagInstantiable
	StrType.slots.Native = &nativeSlot{strNative}
	StrType.slots.Repr = &unaryOpSlot{strRepr}
	StrType.slots.Str = &unaryOpSlot{strStr}
}
