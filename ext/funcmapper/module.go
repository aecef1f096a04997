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

// Package funcmapper provides the test_funcmapper extension module. It
// exercises every calling convention of the bridge: module functions, a
// directly instantiable native class, a native class only reachable through
// a factory function and a dynamic subclass that overrides and super-calls
// native methods.
//
// Every entry point records itself in Calls so that callers can observe
// exactly which native code ran and what it received.
package funcmapper

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pibridge/pibridge/runtime"
)

// ModuleName is the name test_funcmapper is registered under.
const ModuleName = "test_funcmapper"

// Journal collects one line per call handled by the module, in the order
// the calls happened.
type Journal struct {
	mutex sync.Mutex
	lines []string
}

// Calls is the journal every entry point of the module writes to.
var Calls = &Journal{}

// Lines returns a copy of the recorded lines.
func (j *Journal) Lines() []string {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return append([]string(nil), j.lines...)
}

// Reset discards all recorded lines.
func (j *Journal) Reset() {
	j.mutex.Lock()
	j.lines = nil
	j.mutex.Unlock()
}

func (j *Journal) record(f *pibridge.Frame, line string) {
	j.mutex.Lock()
	j.lines = append(j.lines, line)
	j.mutex.Unlock()
	f.Logger().Debug("native call", zap.String("module", ModuleName), zap.String("entry", line))
}

// recordCall records name together with the repr of the arguments it got.
// kwargs is nil for entry points that take no keywords.
func (j *Journal) recordCall(f *pibridge.Frame, name string, args []*pibridge.Object, kwargs map[string]*pibridge.Object) *pibridge.BaseException {
	a, raised := pibridge.Repr(f, pibridge.NewTuple(args...).ToObject())
	if raised != nil {
		return raised
	}
	line := fmt.Sprintf("%s args=%s", name, a.Value())
	if kwargs != nil {
		k, raised := pibridge.Repr(f, sortedDict(kwargs).ToObject())
		if raised != nil {
			return raised
		}
		line += " kwargs=" + k.Value()
	}
	j.record(f, line)
	return nil
}

func sortedDict(m map[string]*pibridge.Object) *pibridge.Dict {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := pibridge.NewDict()
	for _, k := range keys {
		d.SetItem(k, m[k])
	}
	return d
}

func init() {
	pibridge.RegisterModule(ModuleName, "doc for test_funcmapper", initModule)
}

func initModule(f *pibridge.Frame, m *pibridge.Module) *pibridge.BaseException {
	f.Logger().Info("initializing module", zap.String("module", ModuleName))
	m.Register("old_style_class", pibridge.ArityVarArgs, factoryOldStyle, "documentation for old_style_class()")
	m.Register("func", pibridge.ArityKeywords, moduleFunc, "documentation for func()")
	m.Register("sum", pibridge.ArityVarArgs, moduleSum, "Returns the sum of its integer arguments.")
	m.AddObject("meaning_of_life", pibridge.NewStr("s42").ToObject())
	m.AddObject("new_style_class", NewStyleClass.ToObject())
	derived, raised := newDerivedClass(f, NewStyleClass)
	if raised != nil {
		return raised
	}
	m.AddObject("Derived", derived.ToObject())
	return nil
}

func moduleFunc(f *pibridge.Frame, args []*pibridge.Object, kwargs map[string]*pibridge.Object) *pibridge.BaseException {
	return Calls.recordCall(f, "func", args, kwargs)
}

func moduleSum(ints ...int) int {
	total := 0
	for _, i := range ints {
		total += i
	}
	return total
}
