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

// Package pibridge maps native Go functions and types onto a small dynamic
// object model and marshals arguments and results across the boundary.
//
// Callables are registered per class in a dispatch table under a name and an
// arity mode (noargs, varargs or keywords). Calling a registered name
// resolves it along the receiver's method resolution order, converts the
// positional and keyword arguments to the entry point's Go parameter types,
// invokes it and converts the result back. Go errors returned by an entry
// point become exceptions through the error bridge; ErrorSignal selects the
// exception class.
//
// Native structs are exposed with NewNativeClass. Exported fields tagged
// `attr:"name"` become attributes of the class' instances, and dynamic
// subclasses created with NewClass can override or extend the native
// callables and reach the originals through Super.
//
// Modules group module level callables and constants. They are registered
// with RegisterModule and materialized on first ImportModule.
package pibridge
