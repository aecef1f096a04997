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
	"fmt"
	"reflect"
)

type typeFlag int

const (
	// Set when instances can be created by calling the class. This is the
	// default. Value types like NoneType and int clear it.
	typeFlagInstantiable typeFlag = 1 << iota
	// Set when the type can be used as a base class. This is the default.
	typeFlagBasetype typeFlag = 1 << iota
	// Set for classes created at run time, whose attributes may be
	// reassigned.
	typeFlagHeap     typeFlag = 1 << iota
	typeFlagDefault           = typeFlagInstantiable | typeFlagBasetype
)

// Type is a class: a named set of bases, a method resolution order and a
// dispatch table of callables registered against it.
type Type struct {
	Object
	name   string
	doc    string
	basis  reflect.Type
	bases  []*Type
	mro    []*Type
	flags  typeFlag
	slots  typeSlots
	table  *DispatchTable
	native *nativeClass
}

var basisTypes = map[reflect.Type]*Type{
	objectBasis: ObjectType,
	typeBasis:   TypeType,
}

// NewClass creates a class with the given name, base classes and class dict.
// *Function values found in dict are moved into the new class' dispatch
// table as keywords-mode callables, so that they participate in method
// resolution alongside native registrations.
func NewClass(f *Frame, name string, bases []*Type, dict *Dict) (*Type, *BaseException) {
	if len(bases) == 0 {
		return nil, f.RaiseType(TypeErrorType, "class must have base classes")
	}
	var basis reflect.Type
	var native *nativeClass
	for _, base := range bases {
		if base.flags&typeFlagBasetype == 0 {
			format := "type '%s' is not an acceptable base type"
			return nil, f.RaiseType(TypeErrorType, fmt.Sprintf(format, base.Name()))
		}
		basis = basisSelect(basis, base.basis)
		if nc := base.nativeClass(); nc != nil {
			if native != nil && native.rtype != nc.rtype {
				return nil, f.RaiseType(TypeErrorType, "multiple bases have instance lay-out conflict")
			}
			native = nc
		}
	}
	if basis == nil {
		return nil, f.RaiseType(TypeErrorType, "class layout error")
	}
	if dict == nil {
		dict = NewDict()
	}
	t := newType(TypeType, name, basis, bases, dict)
	t.flags |= typeFlagHeap
	if doc := dict.GetItem("__doc__"); doc != nil && doc.isInstance(StrType) {
		t.doc = toStrUnsafe(doc).Value()
	}
	for _, key := range dict.Keys() {
		if v := dict.GetItem(key); v != nil && v.typ == FunctionType {
			fn := toFunctionUnsafe(v)
			t.table.put(newDynamicDescriptor(key, fn.fn, fn.doc))
			dict.DelItem(key)
		}
	}
	if err := prepareType(t); err != "" {
		return nil, f.RaiseType(TypeErrorType, err)
	}
	return t, nil
}

func newType(meta *Type, name string, basis reflect.Type, bases []*Type, dict *Dict) *Type {
	t := &Type{
		Object: Object{typ: meta, dict: dict},
		name:   name,
		basis:  basis,
		bases:  bases,
		flags:  typeFlagDefault,
	}
	t.table = newDispatchTable(t)
	return t
}

func newBasisType(name string, basis reflect.Type, basisFunc interface{}, base *Type) *Type {
	if _, ok := basisTypes[basis]; ok {
		logFatal(fmt.Sprintf("type for basis already exists: %s", basis))
	}
	if basis.Kind() != reflect.Struct {
		logFatal(fmt.Sprintf("basis must be a struct not: %s", basis.Kind()))
	}
	if basis.NumField() == 0 {
		logFatal(fmt.Sprintf("1st field of basis must be base type's basis"))
	}
	if basis.Field(0).Type != base.basis {
		logFatal(fmt.Sprintf("1st field of basis must be base type's basis not: %s", basis.Field(0).Type))
	}
	basisFuncValue := reflect.ValueOf(basisFunc)
	basisFuncType := basisFuncValue.Type()
	if basisFuncValue.Kind() != reflect.Func || basisFuncType.NumIn() != 1 || basisFuncType.NumOut() != 1 ||
		basisFuncType.In(0) != reflect.PtrTo(objectBasis) || basisFuncType.Out(0) != reflect.PtrTo(basis) {
		logFatal(fmt.Sprintf("expected basis func of type func(*Object) *%s", basis.Name()))
	}
	t := newType(TypeType, name, basis, []*Type{base}, nil)
	t.slots.Basis = &basisSlot{func(o *Object) reflect.Value {
		return basisFuncValue.Call([]reflect.Value{reflect.ValueOf(o)})[0].Elem()
	}}
	basisTypes[basis] = t
	return t
}

func newSimpleType(name string, base *Type) *Type {
	return newType(TypeType, name, base.basis, []*Type{base}, nil)
}

// prepareBuiltinType initializes the builtin typ by populating its dict with
// struct field descriptors and whatever init adds, and then calling
// prepareType.
func prepareBuiltinType(typ *Type, init builtinTypeInit) {
	dict := map[string]*Object{}
	if init != nil {
		init(dict)
	}
	if basis := typ.basis; basisTypes[basis] == typ {
		numFields := basis.NumField()
		for i := 0; i < numFields; i++ {
			field := basis.Field(i)
			if attr := field.Tag.Get("attr"); attr != "" {
				dict[attr] = makeStructFieldDescriptor(typ, field.Name, attr)
			}
		}
	}
	typ.setDict(newStringDict(dict))
	if err := prepareType(typ); err != "" {
		logFatal(err)
	}
}

// prepareType calculates typ's mro and inherits its flags and slots from its
// base classes.
func prepareType(typ *Type) string {
	typ.mro = mroCalc(typ)
	if typ.mro == nil {
		return fmt.Sprintf("mro error for: %s", typ.name)
	}
	for _, base := range typ.mro {
		if base.flags&typeFlagInstantiable == 0 {
			typ.flags &^= typeFlagInstantiable
		}
		if base.flags&typeFlagBasetype == 0 {
			typ.flags &^= typeFlagBasetype
		}
	}
	slotsValue := reflect.ValueOf(&typ.slots).Elem()
	for i := 0; i < numSlots; i++ {
		slotField := slotsValue.Field(i)
		if slotField.IsNil() {
			for _, base := range typ.mro {
				baseSlotFunc := reflect.ValueOf(base.slots).Field(i)
				if !baseSlotFunc.IsNil() {
					slotField.Set(baseSlotFunc)
					break
				}
			}
		}
	}
	return ""
}

// Precondition: At least one of seqs is non-empty.
func mroMerge(seqs [][]*Type) []*Type {
	var res []*Type
	numSeqs := len(seqs)
	hasNonEmptySeqs := true
	for hasNonEmptySeqs {
		var cand *Type
		for i := 0; i < numSeqs && cand == nil; i++ {
			// The next candidate will be absent from or at the head
			// of all lists. If we try a candidate and we find it's
			// somewhere past the head of one of the lists, reject.
			seq := seqs[i]
			if len(seq) == 0 {
				continue
			}
			cand = seq[0]
		RejectCandidate:
			for _, seq := range seqs {
				numElems := len(seq)
				for j := 1; j < numElems; j++ {
					if seq[j] == cand {
						cand = nil
						break RejectCandidate
					}
				}
			}
		}
		if cand == nil {
			// Inconsistent hierarchy.
			return nil
		}
		res = append(res, cand)
		hasNonEmptySeqs = false
		for i, seq := range seqs {
			if len(seq) > 0 {
				if seq[0] == cand {
					seqs[i] = seq[1:]
				}
				if len(seqs[i]) > 0 {
					hasNonEmptySeqs = true
				}
			}
		}
	}
	return res
}

func mroCalc(t *Type) []*Type {
	seqs := [][]*Type{{t}}
	for _, b := range t.bases {
		seqs = append(seqs, b.mro)
	}
	seqs = append(seqs, t.bases)
	return mroMerge(seqs)
}

func toTypeUnsafe(o *Object) *Type {
	return (*Type)(o.toPointer())
}

// ToType returns o as a class, or false when o is not one.
func ToType(o *Object) (*Type, bool) {
	if !o.isInstance(TypeType) {
		return nil, false
	}
	return toTypeUnsafe(o), true
}

// ToObject upcasts t to an Object.
func (t *Type) ToObject() *Object {
	return &t.Object
}

// Name returns t's name field.
func (t *Type) Name() string {
	return t.name
}

// Doc returns the class docstring, which may be empty.
func (t *Type) Doc() string {
	return t.doc
}

// Bases returns the direct base classes of t.
func (t *Type) Bases() []*Type {
	return append([]*Type(nil), t.bases...)
}

// MRO returns t's method resolution order, starting with t itself.
func (t *Type) MRO() []*Type {
	return append([]*Type(nil), t.mro...)
}

// IsSubclass returns true if super is t or one of its ancestors.
func (t *Type) IsSubclass(super *Type) bool {
	return t.isSubclass(super)
}

func (t *Type) isSubclass(super *Type) bool {
	for _, b := range t.mro {
		if b == super {
			return true
		}
	}
	return false
}

// mroLookup finds the first class in t's mro that defines name, either as a
// registered callable or as a class dict entry. Exactly one of the results is
// non-nil when name is found.
func (t *Type) mroLookup(name string) (*Object, *CallableDescriptor) {
	for _, b := range t.mro {
		if desc := b.table.Lookup(name); desc != nil {
			return nil, desc
		}
		if d := b.Dict(); d != nil {
			if v := d.GetItem(name); v != nil {
				return v, nil
			}
		}
	}
	return nil, nil
}

func (t *Type) nativeClass() *nativeClass {
	for _, b := range t.mro {
		if b.native != nil {
			return b.native
		}
	}
	return nil
}

var typeBasis = reflect.TypeOf(Type{})

// TypeType is the class of all classes.
var TypeType = &Type{
	name:  "type",
	basis: typeBasis,
	bases: []*Type{ObjectType},
	flags: typeFlagDefault,
	slots: typeSlots{Basis: &basisSlot{typeBasisFunc}},
}

func typeBasisFunc(o *Object) reflect.Value {
	return reflect.ValueOf(toTypeUnsafe(o)).Elem()
}

func typeCall(f *Frame, callable *Object, args Args, kwargs KWArgs) (*Object, *BaseException) {
	t := toTypeUnsafe(callable)
	newFunc := t.slots.New
	if newFunc == nil {
		return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("cannot create '%s' instances", t.Name()))
	}
	o, raised := newFunc.Fn(f, t, args, kwargs)
	if raised != nil {
		return nil, raised
	}
	if !o.isInstance(t) {
		return o, nil
	}
	if init := t.LookupMethod("__init__"); init != nil {
		ret, raised := Invoke(f, init, o, args, kwargs)
		if raised != nil {
			return nil, raised
		}
		if ret != None {
			return nil, f.RaiseType(TypeErrorType, fmt.Sprintf("__init__() should return None, not '%s'", ret.typ.Name()))
		}
	} else if (len(args) > 0 || len(kwargs) > 0) && t.slots.New == ObjectType.slots.New {
		return nil, f.RaiseType(ArityErrorType, fmt.Sprintf("%s() takes no arguments (%d given)", t.Name(), len(args)+len(kwargs)))
	}
	return o, nil
}

func typeGetAttribute(f *Frame, o *Object, name string) (*Object, *BaseException) {
	t := toTypeUnsafe(o)
	switch name {
	case "__name__":
		return NewStr(t.name).ToObject(), nil
	case "__doc__":
		if t.doc == "" {
			return None, nil
		}
		return NewStr(t.doc).ToObject(), nil
	case "__bases__":
		return typeTuple(t.bases), nil
	case "__mro__":
		return typeTuple(t.mro), nil
	}
	attr, callable := t.mroLookup(name)
	if callable != nil {
		return newUnboundMethod(callable, t).ToObject(), nil
	}
	if attr != nil {
		if get := attr.typ.slots.Get; get != nil {
			return get.Fn(f, attr, nil, t)
		}
		return attr, nil
	}
	format := "type object '%s' has no attribute '%s'"
	return nil, f.RaiseType(AttributeErrorType, fmt.Sprintf(format, t.Name(), name))
}

func typeRepr(f *Frame, o *Object) (*Object, *BaseException) {
	return NewStr(fmt.Sprintf("<class '%s'>", toTypeUnsafe(o).Name())).ToObject(), nil
}

func typeSetAttr(f *Frame, o *Object, name string, value *Object) *BaseException {
	t := toTypeUnsafe(o)
	if t.flags&typeFlagHeap == 0 {
		return f.RaiseType(TypeErrorType, fmt.Sprintf("can't set attributes of built-in type '%s'", t.Name()))
	}
	if value.typ == FunctionType {
		fn := toFunctionUnsafe(value)
		t.RegisterFunc(name, fn.fn, fn.doc)
		t.Dict().DelItem(name)
		return nil
	}
	// A data value replaces any callable registered under the same name.
	t.table.remove(name)
	t.Dict().SetItem(name, value)
	return nil
}

func typeTuple(types []*Type) *Object {
	elems := make([]*Object, len(types))
	for i, t := range types {
		elems[i] = t.ToObject()
	}
	return NewTuple(elems...).ToObject()
}

func initTypeType(map[string]*Object) {
	TypeType.typ = TypeType
	TypeType.table = newDispatchTable(TypeType)
	TypeType.slots.Call = &callSlot{typeCall}
	TypeType.slots.GetAttribute = &getAttributeSlot{typeGetAttribute}
	TypeType.slots.Repr = &unaryOpSlot{typeRepr}
	TypeType.slots.SetAttr = &setAttrSlot{typeSetAttr}
}

// basisParent returns the immediate ancestor of basis, which is its first
// field. Returns nil when basis is objectBasis (the root of basis hierarchy.)
func basisParent(basis reflect.Type) reflect.Type {
	if basis == objectBasis {
		return nil
	}
	return basis.Field(0).Type
}

// basisSelect returns b1 if b2 inherits from it, b2 if b1 inherits from b2,
// otherwise nil. b1 can be nil in which case b2 is always returned.
func basisSelect(b1, b2 reflect.Type) reflect.Type {
	if b1 == nil {
		return b2
	}
	// Search up b1's inheritance chain to see if b2 is present.
	basis := b1
	for basis != nil && basis != b2 {
		basis = basisParent(basis)
	}
	if basis != nil {
		return b1
	}
	// Search up b2's inheritance chain to see if b1 is present.
	basis = b2
	for basis != nil && basis != b1 {
		basis = basisParent(basis)
	}
	if basis != nil {
		return b2
	}
	return nil
}
