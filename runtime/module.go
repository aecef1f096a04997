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
	"sync"
)

type moduleState int

const (
	moduleStateNew moduleState = iota
	moduleStateInitializing
	moduleStateReady
)

var (
	importMutex    sync.Mutex
	moduleRegistry = map[string]*moduleSpec{}
	// ModuleType is the base class of every module's class.
	ModuleType = newBasisType("module", reflect.TypeOf(Module{}), toModuleUnsafe, ObjectType)
	// SysModules holds the modules imported so far, keyed by name.
	SysModules = NewDict()
)

// Module is a namespace of functions and constants. Each module gets a class
// of its own, so that its functions live in an ordinary dispatch table and
// resolve exactly like methods.
type Module struct {
	Object
	name  string
	mutex sync.Mutex
	state moduleState
}

// ModuleInit functions populate a module when it is first imported.
type ModuleInit func(f *Frame, m *Module) *BaseException

type moduleSpec struct {
	doc  string
	init ModuleInit
}

// RegisterModule adds the named module to the registry so that it can be
// subsequently imported.
func RegisterModule(name, doc string, init ModuleInit) {
	err := ""
	importMutex.Lock()
	if moduleRegistry[name] == nil {
		moduleRegistry[name] = &moduleSpec{doc, init}
	} else {
		err = "module already registered: " + name
	}
	importMutex.Unlock()
	if err != "" {
		logFatal(err)
	}
}

// ImportModule returns the module registered under name, running its init
// function on first import. A module whose init raises is not cached, so a
// later import retries it. Concurrent imports of one module produce the same
// module object and initialize it once.
func ImportModule(f *Frame, name string) (*Module, *BaseException) {
	importMutex.Lock()
	o := SysModules.GetItem(name)
	var spec *moduleSpec
	if o == nil {
		spec = moduleRegistry[name]
		if spec != nil {
			o = NewModule(name, spec.doc).ToObject()
			SysModules.SetItem(name, o)
		}
	} else {
		spec = moduleRegistry[name]
	}
	importMutex.Unlock()
	if o == nil {
		return nil, f.RaiseType(ImportErrorType, fmt.Sprintf("No module named %s", name))
	}
	m := toModuleUnsafe(o)
	var raised *BaseException
	m.mutex.Lock()
	if m.state == moduleStateNew && spec != nil {
		m.state = moduleStateInitializing
		if spec.init != nil {
			raised = spec.init(f, m)
		}
		if raised == nil {
			m.state = moduleStateReady
		} else {
			m.state = moduleStateNew
			importMutex.Lock()
			if SysModules.GetItem(name) == o {
				SysModules.DelItem(name)
			}
			importMutex.Unlock()
		}
	}
	m.mutex.Unlock()
	if raised != nil {
		return nil, raised
	}
	return m, nil
}

// ResetModules forgets every imported module so that the next import of each
// runs its init function again. Registrations are kept.
func ResetModules() {
	importMutex.Lock()
	for _, name := range SysModules.Keys() {
		SysModules.DelItem(name)
	}
	importMutex.Unlock()
}

// NewModule creates an empty module with its own module class.
func NewModule(name, doc string) *Module {
	t := newType(TypeType, name, ModuleType.basis, []*Type{ModuleType}, NewDict())
	t.doc = doc
	if err := prepareType(t); err != "" {
		logFatal(err)
	}
	d := NewDict()
	d.SetItem("__name__", NewStr(name).ToObject())
	if doc != "" {
		d.SetItem("__doc__", NewStr(doc).ToObject())
	} else {
		d.SetItem("__doc__", None)
	}
	return &Module{Object: Object{typ: t, dict: d}, name: name}
}

func toModuleUnsafe(o *Object) *Module {
	return (*Module)(o.toPointer())
}

// ToObject upcasts m to an Object.
func (m *Module) ToObject() *Object {
	return &m.Object
}

// Name returns the name m was created with.
func (m *Module) Name() string {
	return m.name
}

// Register adds a module level function. It is callable both as an
// attribute of the module and through CallFunction.
func (m *Module) Register(name string, mode ArityMode, fn interface{}, doc string) *CallableDescriptor {
	return m.typ.Register(name, mode, fn, doc)
}

// RegisterFunc adds a module level function that already speaks in objects.
// The module arrives as args[0].
func (m *Module) RegisterFunc(name string, fn Func, doc string) *CallableDescriptor {
	return m.typ.RegisterFunc(name, fn, doc)
}

// AddObject binds name to value in m's namespace, e.g. a constant or a class.
func (m *Module) AddObject(name string, value *Object) {
	m.Dict().SetItem(name, value)
}

// Functions returns the names of m's functions in registration order.
func (m *Module) Functions() []string {
	return m.typ.table.Names()
}

func moduleRepr(f *Frame, o *Object) (*Object, *BaseException) {
	return NewStr(fmt.Sprintf("<module '%s' (built-in)>", toModuleUnsafe(o).name)).ToObject(), nil
}

func initModuleType(map[string]*Object) {
	ModuleType.flags &^= typeFlagInstantiable
	ModuleType.slots.Repr = &unaryOpSlot{moduleRepr}
}
