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
	"sync"
	"testing"
)

func TestImportModule(t *testing.T) {
	inits := 0
	RegisterModule("test_import_basic", "A test module.", func(f *Frame, m *Module) *BaseException {
		inits++
		m.Register("answer", ArityNone, func() int { return 42 }, "The answer.")
		m.Register("echo", ArityVarArgs, func(args []*Object) []*Object { return args }, "")
		m.AddObject("meaning_of_life", NewStr("s42").ToObject())
		return nil
	})
	f := NewRootFrame()
	m, raised := ImportModule(f, "test_import_basic")
	if raised != nil {
		t.Fatalf("import raised %v", raised)
	}
	again, raised := ImportModule(f, "test_import_basic")
	if raised != nil || again != m {
		t.Errorf("second import = %v, %v, want the cached module", again, raised)
	}
	if inits != 1 {
		t.Errorf("init ran %d times, want 1", inits)
	}
	if got := m.Functions(); !reflect.DeepEqual(got, []string{"answer", "echo"}) {
		t.Errorf("Functions() = %v", got)
	}
	cases := []struct {
		attr string
		want *Object
	}{
		{"__name__", NewStr("test_import_basic").ToObject()},
		{"__doc__", NewStr("A test module.").ToObject()},
		{"meaning_of_life", NewStr("s42").ToObject()},
	}
	for _, cas := range cases {
		got, raised := GetAttr(f, m.ToObject(), cas.attr, nil)
		if msg := checkResult(got, cas.want, raised, nil); msg != "" {
			t.Errorf("m.%s %s", cas.attr, msg)
		}
	}
	answer := mustNotRaise(GetAttr(f, m.ToObject(), "answer", nil))
	cas := invokeTestCase{want: NewInt(42).ToObject()}
	if err := runInvokeTestCase(answer, &cas); err != "" {
		t.Error(err)
	}
	cas = invokeTestCase{args: wrapArgs(1, "a"), want: NewTuple(wrapArgs(1, "a")...).ToObject()}
	if err := runInvokeTestCase(mustNotRaise(GetAttr(f, m.ToObject(), "echo", nil)), &cas); err != "" {
		t.Error(err)
	}
	if s := m.ToObject().String(); s != "<module 'test_import_basic' (built-in)>" {
		t.Errorf("repr = %q", s)
	}
}

func TestImportModuleNotFound(t *testing.T) {
	wantExc := mustCreateException(ImportErrorType, "No module named no_such_module")
	if _, raised := ImportModule(NewRootFrame(), "no_such_module"); !exceptionsAreEquivalent(raised, wantExc) {
		t.Errorf("import raised %v, want %v", raised, wantExc)
	}
}

func TestImportModuleInitFails(t *testing.T) {
	inits := 0
	RegisterModule("test_import_fail", "", func(f *Frame, m *Module) *BaseException {
		inits++
		if inits == 1 {
			return f.RaiseType(RuntimeErrorType, "not yet")
		}
		return nil
	})
	f := NewRootFrame()
	wantExc := mustCreateException(RuntimeErrorType, "not yet")
	if _, raised := ImportModule(f, "test_import_fail"); !exceptionsAreEquivalent(raised, wantExc) {
		t.Errorf("first import raised %v, want %v", raised, wantExc)
	}
	if SysModules.GetItem("test_import_fail") != nil {
		t.Errorf("failed module was cached")
	}
	if _, raised := ImportModule(f, "test_import_fail"); raised != nil {
		t.Errorf("second import raised %v", raised)
	}
	if inits != 2 {
		t.Errorf("init ran %d times, want 2", inits)
	}
}

func TestResetModules(t *testing.T) {
	inits := 0
	RegisterModule("test_reset", "", func(*Frame, *Module) *BaseException {
		inits++
		return nil
	})
	f := NewRootFrame()
	first, _ := ImportModule(f, "test_reset")
	ResetModules()
	second, raised := ImportModule(f, "test_reset")
	if raised != nil {
		t.Fatalf("import after reset raised %v", raised)
	}
	if first == second || inits != 2 {
		t.Errorf("import after reset reused the old module (inits = %d)", inits)
	}
}

func TestRegisterModuleTwice(t *testing.T) {
	oldLogFatal := logFatal
	defer func() { logFatal = oldLogFatal }()
	var msg string
	logFatal = func(m string) { msg = m }
	RegisterModule("test_register_twice", "", nil)
	RegisterModule("test_register_twice", "", nil)
	if want := "module already registered: test_register_twice"; msg != want {
		t.Errorf("logFatal(%q), want %q", msg, want)
	}
}

func TestImportModuleConcurrent(t *testing.T) {
	var mutex sync.Mutex
	inits := 0
	RegisterModule("test_import_concurrent", "", func(*Frame, *Module) *BaseException {
		mutex.Lock()
		inits++
		mutex.Unlock()
		return nil
	})
	modules := make([]*Module, 8)
	var wg sync.WaitGroup
	for i := range modules {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, raised := ImportModule(NewRootFrame(), "test_import_concurrent")
			if raised != nil {
				t.Errorf("import raised %v", raised)
			}
			modules[i] = m
		}(i)
	}
	wg.Wait()
	for _, m := range modules[1:] {
		if m != modules[0] {
			t.Errorf("concurrent imports returned different modules")
		}
	}
	if inits != 1 {
		t.Errorf("init ran %d times, want 1", inits)
	}
}

func TestModuleNotInstantiable(t *testing.T) {
	wantExc := mustCreateException(TypeErrorType, "cannot create 'module' instances")
	if _, raised := ModuleType.Call(NewRootFrame(), nil, nil); !exceptionsAreEquivalent(raised, wantExc) {
		t.Errorf("module() raised %v, want %v", raised, wantExc)
	}
}

func TestModulesHaveDistinctClasses(t *testing.T) {
	m1, m2 := NewModule("one", ""), NewModule("two", "")
	m1.Register("f", ArityNone, func() int { return 1 }, "")
	if _, raised := LookupFunction(NewRootFrame(), m2, "f"); raised == nil {
		t.Errorf("function registered on one module is visible on another")
	}
	if !m1.ToObject().isInstance(ModuleType) || m1.typ == m2.typ {
		t.Errorf("modules share class %v", m1.typ.Name())
	}
	if doc := m2.Dict().GetItem("__doc__"); doc != None {
		t.Errorf("__doc__ = %v, want None", doc)
	}
}
