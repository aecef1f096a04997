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
	"sync"
)

// Dict is a string keyed mapping that remembers insertion order. It backs
// instance and class attributes, module namespaces and keyword arguments
// marshalled from native maps.
//
// Dicts are safe for concurrent use.
type Dict struct {
	Object
	mutex   sync.RWMutex
	keys    []string
	entries map[string]*Object
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{Object: Object{typ: DictType}, entries: map[string]*Object{}}
}

func newStringDict(items map[string]*Object) *Dict {
	d := NewDict()
	for _, k := range sortedKeys(items) {
		d.SetItem(k, items[k])
	}
	return d
}

func toDictUnsafe(o *Object) *Dict {
	return (*Dict)(o.toPointer())
}

// ToObject upcasts d to an Object.
func (d *Dict) ToObject() *Object {
	return &d.Object
}

// GetItem returns the value stored under key or nil if there is none.
func (d *Dict) GetItem(key string) *Object {
	d.mutex.RLock()
	v := d.entries[key]
	d.mutex.RUnlock()
	return v
}

// SetItem stores value under key, keeping the original position when key is
// already present.
func (d *Dict) SetItem(key string, value *Object) {
	d.mutex.Lock()
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = value
	d.mutex.Unlock()
}

// DelItem removes key from d, returning whether it was present.
func (d *Dict) DelItem(key string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.entries[key]; !ok {
		return false
	}
	delete(d.entries, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns d's keys in insertion order.
func (d *Dict) Keys() []string {
	d.mutex.RLock()
	keys := append([]string(nil), d.keys...)
	d.mutex.RUnlock()
	return keys
}

// Len returns the number of entries in d.
func (d *Dict) Len() int {
	d.mutex.RLock()
	n := len(d.keys)
	d.mutex.RUnlock()
	return n
}

// DictType is the class of dicts.
var DictType = newBasisType("dict", reflect.TypeOf(Dict{}), toDictUnsafe, ObjectType)

func dictNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	d := toDictUnsafe(o)
	m := make(map[string]interface{}, d.Len())
	for _, k := range d.Keys() {
		v, raised := ToNative(f, d.GetItem(k))
		if raised != nil {
			return reflect.Value{}, raised
		}
		if v.IsValid() && v.CanInterface() {
			m[k] = v.Interface()
		} else {
			m[k] = nil
		}
	}
	return reflect.ValueOf(m), nil
}

func dictRepr(f *Frame, o *Object) (*Object, *BaseException) {
	d := toDictUnsafe(o)
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteString(", ")
		}
		s, raised := Repr(f, d.GetItem(k))
		if raised != nil {
			return nil, raised
		}
		fmt.Fprintf(&buf, "%s: %s", toStrUnsafe(mustStrRepr(k)).Value(), s.Value())
	}
	buf.WriteString("}")
	return NewStr(buf.String()).ToObject(), nil
}

func mustStrRepr(s string) *Object {
	r, _ := strRepr(nil, NewStr(s).ToObject())
	return r
}

func initDictType(map[string]*Object) {
	DictType.flags &^= typeFlagInstantiable
	DictType.slots.Native = &nativeSlot{dictNative}
	DictType.slots.Repr = &unaryOpSlot{dictRepr}
}
