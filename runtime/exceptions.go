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

var (
	// ArithmeticErrorType is the base of numeric failures.
	ArithmeticErrorType = newSimpleType("ArithmeticError", StandardErrorType)
	// ArityErrorType is raised when a call supplies arguments the target's
	// arity mode cannot accept.
	ArityErrorType = newSimpleType("ArityError", TypeErrorType)
	// AssertionErrorType corresponds to the type 'AssertionError'.
	AssertionErrorType = newSimpleType("AssertionError", StandardErrorType)
	// AttributeErrorType is raised when a name cannot be resolved on an
	// object or class.
	AttributeErrorType = newSimpleType("AttributeError", StandardErrorType)
	// ExceptionType corresponds to the type 'Exception'.
	ExceptionType = newSimpleType("Exception", BaseExceptionType)
	// ImportErrorType is raised when a module is not registered.
	ImportErrorType = newSimpleType("ImportError", StandardErrorType)
	// IndexErrorType corresponds to the type 'IndexError'.
	IndexErrorType = newSimpleType("IndexError", LookupErrorType)
	// KeyErrorType corresponds to the type 'KeyError'.
	KeyErrorType = newSimpleType("KeyError", LookupErrorType)
	// KeywordNotSupportedErrorType is raised when keyword arguments reach a
	// callable registered without keyword support.
	KeywordNotSupportedErrorType = newSimpleType("KeywordNotSupportedError", TypeErrorType)
	// LookupErrorType corresponds to the type 'LookupError'.
	LookupErrorType = newSimpleType("LookupError", StandardErrorType)
	// NameErrorType is raised when a name is not bound in any namespace.
	NameErrorType = newSimpleType("NameError", StandardErrorType)
	// NotImplementedErrorType corresponds to the type 'NotImplementedError'.
	NotImplementedErrorType = newSimpleType("NotImplementedError", RuntimeErrorType)
	// OverflowErrorType is raised by native code signalling KindOverflow.
	OverflowErrorType = newSimpleType("OverflowError", ArithmeticErrorType)
	// RuntimeErrorType is the default translation of native failures.
	RuntimeErrorType = newSimpleType("RuntimeError", StandardErrorType)
	// StandardErrorType corresponds to the type 'StandardError'.
	StandardErrorType = newSimpleType("StandardError", ExceptionType)
	// SystemErrorType signals an internal inconsistency, e.g. a malformed
	// registration discovered at call time.
	SystemErrorType = newSimpleType("SystemError", StandardErrorType)
	// TypeConversionErrorType is raised when an argument cannot be converted
	// to the native type an entry point expects.
	TypeConversionErrorType = newSimpleType("TypeConversionError", TypeErrorType)
	// TypeErrorType corresponds to the type 'TypeError'.
	TypeErrorType = newSimpleType("TypeError", StandardErrorType)
	// ValueErrorType corresponds to the type 'ValueError'.
	ValueErrorType = newSimpleType("ValueError", StandardErrorType)
)
