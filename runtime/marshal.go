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
	"math"
	"reflect"
	"unsafe"
)

// WrapNative converts a Go value into its object representation:
//
//	bool                          -> bool
//	signed and unsigned integers  -> int (TypeConversionError if out of range)
//	floats                        -> float
//	strings                       -> str
//	slices and arrays             -> tuple
//	maps keyed by string          -> dict
//	nil pointers, maps, slices,
//	interfaces, chans and funcs   -> None
//	*Object and basis pointers    -> the object itself
//	registered native classes     -> a new instance of that class
//
// Anything else becomes an opaque native object that converts back to the
// original value when passed to native code.
func WrapNative(f *Frame, v reflect.Value) (*Object, *BaseException) {
	switch v.Kind() {
	case reflect.Invalid:
		return None, nil
	case reflect.Interface:
		if v.IsNil() {
			return None, nil
		}
		// Wrap the underlying, concrete value.
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		if v.IsNil() {
			return None, nil
		}
	}
	rtype := v.Type()
	if rtype == objectPtrType {
		return (*Object)(unsafe.Pointer(v.Pointer())), nil
	}
	if rtype.Kind() == reflect.Ptr && basisTypes[rtype.Elem()] != nil {
		// A basis type is binary compatible with Object.
		return (*Object)(unsafe.Pointer(v.Pointer())), nil
	}
	if t := lookupNativeClass(rtype); t != nil {
		return newNativeInstance(t, v), nil
	}
	switch v.Kind() {
	case reflect.Bool:
		return GetBool(v.Bool()).ToObject(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < math.MinInt || i > math.MaxInt {
			return nil, f.RaiseType(TypeConversionErrorType, fmt.Sprintf("%d does not fit in an int", i))
		}
		return NewInt(int(i)).ToObject(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i := v.Uint()
		if i > math.MaxInt {
			return nil, f.RaiseType(TypeConversionErrorType, fmt.Sprintf("%d does not fit in an int", i))
		}
		return NewInt(int(i)).ToObject(), nil
	case reflect.Float32, reflect.Float64:
		return NewFloat(v.Float()).ToObject(), nil
	case reflect.String:
		return NewStr(v.String()).ToObject(), nil
	case reflect.Slice, reflect.Array:
		numElems := v.Len()
		elems := make([]*Object, numElems)
		for i := 0; i < numElems; i++ {
			elem, raised := WrapNative(f, v.Index(i))
			if raised != nil {
				return nil, raised
			}
			elems[i] = elem
		}
		return NewTuple(elems...).ToObject(), nil
	case reflect.Map:
		if rtype.Key().Kind() != reflect.String {
			break
		}
		d := NewDict()
		for _, k := range sortedMapKeys(v) {
			elem, raised := WrapNative(f, v.MapIndex(k))
			if raised != nil {
				return nil, raised
			}
			d.SetItem(k.String(), elem)
		}
		return d.ToObject(), nil
	}
	return newNative(v).ToObject(), nil
}

// ToNative returns the natural Go value of o: int, bool, float64 and string
// for the scalar classes, []interface{} for tuples, map[string]interface{}
// for dicts, the wrapped value of native objects and o itself otherwise.
// None becomes a nil interface{}.
func ToNative(f *Frame, o *Object) (reflect.Value, *BaseException) {
	if native := o.typ.slots.Native; native != nil {
		return native.Fn(f, o)
	}
	return reflect.ValueOf(o), nil
}

func noneNative(*Frame, *Object) (reflect.Value, *BaseException) {
	return reflect.Zero(emptyInterfaceType), nil
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// maybeConvertValue converts o into a value assignable to expectedRType,
// raising TypeConversionError when no conversion applies or an integer does
// not fit.
func maybeConvertValue(f *Frame, o *Object, expectedRType reflect.Type) (reflect.Value, *BaseException) {
	if expectedRType == objectPtrType {
		return reflect.ValueOf(o), nil
	}
	if expectedRType.Kind() == reflect.Ptr {
		// When the expected type is some basis pointer, check if o is
		// an instance of that basis and use it if so.
		if t, ok := basisTypes[expectedRType.Elem()]; ok && o.isInstance(t) {
			return t.slots.Basis.Fn(o).Addr(), nil
		}
	}
	if o == None {
		switch expectedRType.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
			return reflect.Zero(expectedRType), nil
		}
		return reflect.Value{}, conversionError(f, o, expectedRType)
	}
	switch {
	case expectedRType.Kind() == reflect.Slice && o.isInstance(TupleType):
		return convertSlice(f, toTupleUnsafe(o).elems, expectedRType)
	case expectedRType.Kind() == reflect.Map && expectedRType.Key().Kind() == reflect.String && o.isInstance(DictType):
		d := toDictUnsafe(o)
		kwargs := make(KWArgs, 0, d.Len())
		for _, k := range d.Keys() {
			kwargs = append(kwargs, KWArg{k, d.GetItem(k)})
		}
		return convertMap(f, kwargs, expectedRType)
	}
	val, raised := ToNative(f, o)
	if raised != nil {
		return reflect.Value{}, raised
	}
	for val.IsValid() {
		rtype := val.Type()
		if rtype == expectedRType {
			return val, nil
		}
		if expectedRType.Kind() == reflect.Interface && rtype.Implements(expectedRType) {
			return val.Convert(expectedRType), nil
		}
		if convertible(rtype, expectedRType) {
			converted, ok := convertScalar(val, expectedRType)
			if !ok {
				format := "%s does not fit in %s"
				return reflect.Value{}, f.RaiseType(TypeConversionErrorType, fmt.Sprintf(format, describeValue(val), expectedRType))
			}
			return converted, nil
		}
		if rtype.Kind() == reflect.Ptr && !val.IsNil() {
			val = val.Elem()
			continue
		}
		break
	}
	return reflect.Value{}, conversionError(f, o, expectedRType)
}

func conversionError(f *Frame, o *Object, expected reflect.Type) *BaseException {
	format := "an %s is required (got %s)"
	return f.RaiseType(TypeConversionErrorType, fmt.Sprintf(format, expected, o.typ.Name()))
}

func describeValue(v reflect.Value) string {
	switch {
	case isIntKind(v.Kind()):
		return fmt.Sprint(v.Int())
	case isUintKind(v.Kind()):
		return fmt.Sprint(v.Uint())
	}
	return v.Type().String()
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// convertible reports whether a value of from may be converted to to. Go
// allows conversions that would surprise a caller, like int to string, so
// only conversions within a family of kinds (and integers to floats) are
// permitted.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	fk, tk := from.Kind(), to.Kind()
	switch {
	case isIntKind(fk) || isUintKind(fk):
		return isIntKind(tk) || isUintKind(tk) || isFloatKind(tk)
	case isFloatKind(fk):
		return isFloatKind(tk)
	}
	return fk == tk
}

// convertScalar converts val to rtype, returning false when an integer does
// not fit.
func convertScalar(val reflect.Value, rtype reflect.Type) (reflect.Value, bool) {
	fk, tk := val.Kind(), rtype.Kind()
	result := reflect.New(rtype).Elem()
	switch {
	case isIntKind(fk) && isIntKind(tk):
		if result.OverflowInt(val.Int()) {
			return reflect.Value{}, false
		}
		result.SetInt(val.Int())
	case isIntKind(fk) && isUintKind(tk):
		i := val.Int()
		if i < 0 || result.OverflowUint(uint64(i)) {
			return reflect.Value{}, false
		}
		result.SetUint(uint64(i))
	case isUintKind(fk) && isIntKind(tk):
		u := val.Uint()
		if u > math.MaxInt64 || result.OverflowInt(int64(u)) {
			return reflect.Value{}, false
		}
		result.SetInt(int64(u))
	case isUintKind(fk) && isUintKind(tk):
		if result.OverflowUint(val.Uint()) {
			return reflect.Value{}, false
		}
		result.SetUint(val.Uint())
	default:
		return val.Convert(rtype), true
	}
	return result, true
}

func convertSlice(f *Frame, elems []*Object, rtype reflect.Type) (reflect.Value, *BaseException) {
	s := reflect.MakeSlice(rtype, len(elems), len(elems))
	elemType := rtype.Elem()
	for i, elem := range elems {
		v, raised := maybeConvertValue(f, elem, elemType)
		if raised != nil {
			return reflect.Value{}, raised
		}
		s.Index(i).Set(v)
	}
	return s, nil
}

func convertMap(f *Frame, kwargs KWArgs, rtype reflect.Type) (reflect.Value, *BaseException) {
	m := reflect.MakeMapWithSize(rtype, len(kwargs))
	keyType, elemType := rtype.Key(), rtype.Elem()
	for _, kw := range kwargs {
		key := reflect.ValueOf(kw.Name).Convert(keyType)
		if m.MapIndex(key).IsValid() {
			format := "got multiple values for keyword argument '%s'"
			return reflect.Value{}, f.RaiseType(TypeErrorType, fmt.Sprintf(format, kw.Name))
		}
		v, raised := maybeConvertValue(f, kw.Value, elemType)
		if raised != nil {
			return reflect.Value{}, raised
		}
		m.SetMapIndex(key, v)
	}
	return m, nil
}

// marshalIn converts the call in cf into the argument list of desc's native
// entry point. child is the frame the entry point runs in.
func marshalIn(f, child *Frame, cf *CallFrame, desc *CallableDescriptor) ([]reflect.Value, *BaseException) {
	sig := desc.sig
	in := make([]reflect.Value, 0, 4)
	if sig.frame {
		in = append(in, reflect.ValueOf(child))
	}
	if sig.recv != nil {
		recv, raised := convertReceiver(f, desc, cf.Target)
		if raised != nil {
			return nil, raised
		}
		in = append(in, recv)
	}
	switch desc.mode {
	case ArityNone:
		if n := len(cf.Args) + len(cf.KWArgs); n > 0 && f.Config().StrictNoArgs {
			format := "%s takes no arguments (%d given)"
			return nil, f.RaiseType(ArityErrorType, fmt.Sprintf(format, desc.qualifiedName(), n))
		}
	case ArityVarArgs:
		if len(cf.KWArgs) > 0 {
			format := "%s takes no keyword arguments"
			return nil, f.RaiseType(KeywordNotSupportedErrorType, fmt.Sprintf(format, desc.qualifiedName()))
		}
		args, raised := marshalArgs(f, desc, cf.Args)
		if raised != nil {
			return nil, raised
		}
		in = append(in, args)
	case ArityKeywords:
		args, raised := marshalArgs(f, desc, cf.Args)
		if raised != nil {
			return nil, raised
		}
		kwargs, raised := convertMap(f, cf.KWArgs, sig.kwargs)
		if raised != nil {
			return nil, argumentError(f, desc, raised, "")
		}
		in = append(in, args, kwargs)
	}
	return in, nil
}

func marshalArgs(f *Frame, desc *CallableDescriptor, args Args) (reflect.Value, *BaseException) {
	rtype := desc.sig.args
	s := reflect.MakeSlice(rtype, len(args), len(args))
	elemType := rtype.Elem()
	for i, arg := range args {
		v, raised := maybeConvertValue(f, arg, elemType)
		if raised != nil {
			return reflect.Value{}, argumentError(f, desc, raised, fmt.Sprintf("argument %d", i+1))
		}
		s.Index(i).Set(v)
	}
	return s, nil
}

// argumentError prefixes a conversion failure with the callable's name and
// the position of the offending argument, keeping its class.
func argumentError(f *Frame, desc *CallableDescriptor, raised *BaseException, where string) *BaseException {
	prefix := desc.qualifiedName()
	if where != "" {
		prefix += " " + where
	}
	return f.RaiseType(raised.typ, fmt.Sprintf("%s: %s", prefix, raised.Message()))
}

// convertReceiver produces the receiver parameter of desc's entry point from
// the call target.
func convertReceiver(f *Frame, desc *CallableDescriptor, target *Object) (reflect.Value, *BaseException) {
	recv := desc.sig.recv
	if target == nil {
		return reflect.Value{}, f.RaiseType(TypeErrorType, fmt.Sprintf("%s requires a target", desc.qualifiedName()))
	}
	if recv == objectPtrType {
		return reflect.ValueOf(target), nil
	}
	if recv.Kind() == reflect.Ptr {
		if t, ok := basisTypes[recv.Elem()]; ok && target.isInstance(t) {
			return t.slots.Basis.Fn(target).Addr(), nil
		}
	}
	if target.typ.basis == nativeBasis {
		v := toNativeUnsafe(target).value
		if !v.IsValid() {
			format := "'%s' object is not initialized; %s needs its native value"
			return reflect.Value{}, f.RaiseType(TypeConversionErrorType, fmt.Sprintf(format, target.typ.Name(), desc.qualifiedName()))
		}
		if v.Type().AssignableTo(recv) {
			return v, nil
		}
		if v.Type().ConvertibleTo(recv) && v.Kind() == recv.Kind() {
			return v.Convert(recv), nil
		}
	}
	owner := "?"
	if desc.owner != nil {
		owner = desc.owner.Name()
	}
	format := "descriptor '%s' requires a '%s' object but received a '%s'"
	return reflect.Value{}, f.RaiseType(TypeConversionErrorType, fmt.Sprintf(format, desc.name, owner, target.typ.Name()))
}

// marshalOut converts the results of a native entry point into the single
// object the caller receives. A non-nil trailing error is handed to the
// error bridge instead.
func marshalOut(f *Frame, desc *CallableDescriptor, results []reflect.Value) (*Object, *BaseException) {
	if desc.sig.errResult {
		last := results[len(results)-1]
		results = results[:len(results)-1]
		if raised := resultError(f, last); raised != nil {
			return nil, raised
		}
	}
	switch len(results) {
	case 0:
		return None, nil
	case 1:
		return WrapNative(f, results[0])
	}
	elems := make([]*Object, len(results))
	for i, result := range results {
		elem, raised := WrapNative(f, result)
		if raised != nil {
			return nil, raised
		}
		elems[i] = elem
	}
	return NewTuple(elems...).ToObject(), nil
}

func resultError(f *Frame, v reflect.Value) *BaseException {
	if v.IsNil() {
		return nil
	}
	if v.Type() == baseExceptionPtrType {
		exc := v.Interface().(*BaseException)
		f.RestoreExc(exc)
		return exc
	}
	err := v.Interface().(error)
	if exc, ok := err.(*BaseException); ok && exc == nil {
		return nil
	}
	return raiseToCaller(f, err)
}
