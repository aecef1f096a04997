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
	"errors"
	"fmt"
)

// ErrorKind classifies a failure signalled by native code. Each kind maps to
// one exception class on the caller's side.
type ErrorKind int

const (
	// KindRuntime is the default and maps to RuntimeError.
	KindRuntime ErrorKind = iota
	// KindValue maps to ValueError.
	KindValue
	// KindType maps to TypeError.
	KindType
	// KindKey maps to KeyError.
	KindKey
	// KindIndex maps to IndexError.
	KindIndex
	// KindNotImplemented maps to NotImplementedError.
	KindNotImplemented
	// KindOverflow maps to OverflowError.
	KindOverflow
	// KindAttribute maps to AttributeError.
	KindAttribute
)

var errorKindNames = [...]string{"runtime", "value", "type", "key", "index", "not_implemented", "overflow", "attribute"}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

func (k ErrorKind) exceptionType() *Type {
	switch k {
	case KindValue:
		return ValueErrorType
	case KindType:
		return TypeErrorType
	case KindKey:
		return KeyErrorType
	case KindIndex:
		return IndexErrorType
	case KindNotImplemented:
		return NotImplementedErrorType
	case KindOverflow:
		return OverflowErrorType
	case KindAttribute:
		return AttributeErrorType
	}
	return RuntimeErrorType
}

// ErrorSignal is the error native entry points return to raise a specific
// exception class in the caller.
type ErrorSignal struct {
	Kind    ErrorKind
	Message string
}

// Signal returns an ErrorSignal of the given kind with a formatted message.
func Signal(kind ErrorKind, format string, args ...interface{}) *ErrorSignal {
	return &ErrorSignal{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ErrorSignal) Error() string {
	return e.Message
}

// raiseToCaller translates err, as returned by a native entry point, into
// the exception the caller observes. An exception anywhere in err's chain
// passes through unchanged. Otherwise an ErrorSignal in the chain selects the
// exception class, defaulting to RuntimeError, and err's text becomes the
// message verbatim.
func raiseToCaller(f *Frame, err error) *BaseException {
	var exc *BaseException
	if errors.As(err, &exc) && exc != nil {
		f.RestoreExc(exc)
		return exc
	}
	var sig *ErrorSignal
	if errors.As(err, &sig) && sig != nil {
		return f.RaiseType(sig.Kind.exceptionType(), err.Error())
	}
	return f.RaiseType(RuntimeErrorType, err.Error())
}
