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
)

var (
	// Builtins holds the names visible to every script: the core classes,
	// the exception hierarchy and a handful of introspection functions.
	Builtins = NewDict()
	// ExceptionTypes contains all builtin exception types.
	ExceptionTypes []*Type
	// NoneType is the class of None.
	NoneType = newSimpleType("NoneType", ObjectType)
	// None is the singleton marking the absence of a value. Entry points
	// without results return it.
	None = &Object{typ: NoneType}
)

func noneRepr(*Frame, *Object) (*Object, *BaseException) {
	return NewStr("None").ToObject(), nil
}

func initNoneType(map[string]*Object) {
	NoneType.flags &= ^(typeFlagInstantiable | typeFlagBasetype)
	NoneType.slots.Repr = &unaryOpSlot{noneRepr}
	NoneType.slots.Native = &nativeSlot{noneNative}
}

type typeState int

const (
	typeStateNotReady typeState = iota
	typeStateInitializing
	typeStateReady
)

type builtinTypeInit func(map[string]*Object)

type builtinTypeInfo struct {
	state  typeState
	init   builtinTypeInit
	global bool
}

var builtinTypes = map[*Type]*builtinTypeInfo{
	ArithmeticErrorType:          {global: true},
	ArityErrorType:               {global: true},
	AssertionErrorType:           {global: true},
	AttributeErrorType:           {global: true},
	BaseExceptionType:            {init: initBaseExceptionType, global: true},
	BoolType:                     {init: initBoolType, global: true},
	DictType:                     {init: initDictType, global: true},
	ExceptionType:                {global: true},
	FloatType:                    {init: initFloatType, global: true},
	FunctionType:                 {init: initFunctionType},
	ImportErrorType:              {global: true},
	IndexErrorType:               {global: true},
	IntType:                      {init: initIntType, global: true},
	KeyErrorType:                 {global: true},
	KeywordNotSupportedErrorType: {global: true},
	LookupErrorType:              {global: true},
	MethodType:                   {init: initMethodType},
	ModuleType:                   {init: initModuleType},
	nativeType:                   {init: initNativeType},
	NameErrorType:                {global: true},
	NoneType:                     {init: initNoneType, global: true},
	NotImplementedErrorType:      {global: true},
	ObjectType:                   {init: initObjectType, global: true},
	OverflowErrorType:            {global: true},
	PropertyType:                 {init: initPropertyType, global: true},
	RuntimeErrorType:             {global: true},
	StandardErrorType:            {global: true},
	StrType:                      {init: initStrType, global: true},
	superType:                    {init: initSuperType, global: true},
	SystemErrorType:              {global: true},
	TupleType:                    {init: initTupleType, global: true},
	TypeConversionErrorType:      {global: true},
	TypeErrorType:                {global: true},
	TypeType:                     {init: initTypeType, global: true},
	ValueErrorType:               {global: true},
}

func init() {
	builtinMap := map[string]*Object{
		"dir":        newBuiltinFunction("dir", builtinDir).ToObject(),
		"False":      False.ToObject(),
		"getattr":    newBuiltinFunction("getattr", builtinGetAttr).ToObject(),
		"hasattr":    newBuiltinFunction("hasattr", builtinHasAttr).ToObject(),
		"isinstance": newBuiltinFunction("isinstance", builtinIsInstance).ToObject(),
		"None":       None,
		"repr":       newBuiltinFunction("repr", builtinRepr).ToObject(),
		"setattr":    newBuiltinFunction("setattr", builtinSetAttr).ToObject(),
		"True":       True.ToObject(),
	}
	// Do type initialization in two phases so that we don't have to think
	// about hard-to-understand cycles.
	for typ, info := range builtinTypes {
		initBuiltinType(typ, info)
		if info.global {
			builtinMap[typ.name] = typ.ToObject()
		}
	}
	Builtins = newStringDict(builtinMap)
}

func initBuiltinType(typ *Type, info *builtinTypeInfo) {
	if info.state == typeStateReady {
		return
	}
	if info.state == typeStateInitializing {
		logFatal(fmt.Sprintf("cycle in type initialization for: %s", typ.name))
	}
	info.state = typeStateInitializing
	for _, base := range typ.bases {
		baseInfo, ok := builtinTypes[base]
		if !ok {
			logFatal(fmt.Sprintf("base type not registered for: %s", typ.name))
		}
		initBuiltinType(base, baseInfo)
	}
	prepareBuiltinType(typ, info.init)
	info.state = typeStateReady
	if typ.isSubclass(BaseExceptionType) {
		ExceptionTypes = append(ExceptionTypes, typ)
	}
}

func builtinDir(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "dir", args, ObjectType); raised != nil {
		return nil, raised
	}
	names := Dir(f, args[0])
	elems := make([]*Object, len(names))
	for i, name := range names {
		elems[i] = NewStr(name).ToObject()
	}
	return NewTuple(elems...).ToObject(), nil
}

func builtinGetAttr(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	expectedTypes := []*Type{ObjectType, StrType, ObjectType}
	if len(args) == 2 {
		expectedTypes = expectedTypes[:2]
	}
	if raised := checkFunctionArgs(f, "getattr", args, expectedTypes...); raised != nil {
		return nil, raised
	}
	var def *Object
	if len(args) == 3 {
		def = args[2]
	}
	return GetAttr(f, args[0], toStrUnsafe(args[1]).Value(), def)
}

func builtinHasAttr(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "hasattr", args, ObjectType, StrType); raised != nil {
		return nil, raised
	}
	if _, raised := GetAttr(f, args[0], toStrUnsafe(args[1]).Value(), nil); raised != nil {
		if raised.isInstance(AttributeErrorType) {
			f.RestoreExc(nil)
			return False.ToObject(), nil
		}
		return nil, raised
	}
	return True.ToObject(), nil
}

func builtinIsInstance(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "isinstance", args, ObjectType, TypeType); raised != nil {
		return nil, raised
	}
	return GetBool(args[0].isInstance(toTypeUnsafe(args[1]))).ToObject(), nil
}

func builtinRepr(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "repr", args, ObjectType); raised != nil {
		return nil, raised
	}
	s, raised := Repr(f, args[0])
	if raised != nil {
		return nil, raised
	}
	return s.ToObject(), nil
}

func builtinSetAttr(f *Frame, args Args, _ KWArgs) (*Object, *BaseException) {
	if raised := checkFunctionArgs(f, "setattr", args, ObjectType, StrType, ObjectType); raised != nil {
		return nil, raised
	}
	if raised := SetAttr(f, args[0], toStrUnsafe(args[1]).Value(), args[2]); raised != nil {
		return nil, raised
	}
	return None, nil
}
