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
	"sync"
	"sync/atomic"
)

// registerMutex serializes writers of every dispatch table. Readers never
// take it: each write publishes a fresh snapshot.
var registerMutex sync.Mutex

// DispatchTable maps names to the callables registered directly on one
// class. Inherited callables are found by walking the mro, never by copying
// them into a subclass' table.
type DispatchTable struct {
	owner *Type
	snap  atomic.Pointer[tableSnapshot]
}

type tableSnapshot struct {
	entries map[string]*CallableDescriptor
	names   []string
}

var emptySnapshot = &tableSnapshot{entries: map[string]*CallableDescriptor{}}

func newDispatchTable(owner *Type) *DispatchTable {
	d := &DispatchTable{owner: owner}
	d.snap.Store(emptySnapshot)
	return d
}

// Lookup returns the callable registered under name directly on d's class,
// or nil.
func (d *DispatchTable) Lookup(name string) *CallableDescriptor {
	if d == nil {
		return nil
	}
	return d.snap.Load().entries[name]
}

// Names returns the registered names in registration order.
func (d *DispatchTable) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.snap.Load().names...)
}

// Len returns the number of registered callables.
func (d *DispatchTable) Len() int {
	if d == nil {
		return 0
	}
	return len(d.snap.Load().names)
}

// put registers a copy of desc owned by d's class, replacing any previous
// registration under the same name.
func (d *DispatchTable) put(desc *CallableDescriptor) *CallableDescriptor {
	owned := *desc
	owned.owner = d.owner
	registerMutex.Lock()
	defer registerMutex.Unlock()
	old := d.snap.Load()
	next := &tableSnapshot{entries: make(map[string]*CallableDescriptor, len(old.entries)+1), names: old.names}
	for k, v := range old.entries {
		next.entries[k] = v
	}
	if _, ok := old.entries[desc.name]; !ok {
		next.names = append(old.names[:len(old.names):len(old.names)], desc.name)
	}
	next.entries[desc.name] = &owned
	d.snap.Store(next)
	return &owned
}

// remove drops the callable registered under name, reporting whether there
// was one.
func (d *DispatchTable) remove(name string) bool {
	if d == nil {
		return false
	}
	registerMutex.Lock()
	defer registerMutex.Unlock()
	old := d.snap.Load()
	if _, ok := old.entries[name]; !ok {
		return false
	}
	next := &tableSnapshot{entries: make(map[string]*CallableDescriptor, len(old.entries)), names: make([]string, 0, len(old.names))}
	for k, v := range old.entries {
		if k != name {
			next.entries[k] = v
		}
	}
	for _, n := range old.names {
		if n != name {
			next.names = append(next.names, n)
		}
	}
	d.snap.Store(next)
	return true
}

// Table returns t's own dispatch table.
func (t *Type) Table() *DispatchTable {
	return t.table
}

// Register validates fn against mode and registers it on t under name. A
// later registration under the same name replaces the earlier one. An entry
// point that does not match mode is a programming error and aborts the
// process.
func (t *Type) Register(name string, mode ArityMode, fn interface{}, doc string) *CallableDescriptor {
	desc, err := NewCallableDescriptor(name, mode, fn, doc)
	if err != nil {
		logFatal(fmt.Sprintf("register %s.%s: %s", t.Name(), name, err))
		return nil
	}
	return t.table.put(desc)
}

// RegisterFunc registers a callable that already speaks in objects. It is
// always in keywords mode and receives its target as args[0].
func (t *Type) RegisterFunc(name string, fn Func, doc string) *CallableDescriptor {
	return t.table.put(newDynamicDescriptor(name, fn, doc))
}

// LookupMethod walks t's mro and returns the first callable registered under
// name, or nil.
func (t *Type) LookupMethod(name string) *CallableDescriptor {
	for _, b := range t.mro {
		if desc := b.table.Lookup(name); desc != nil {
			return desc
		}
	}
	return nil
}

// Resolve finds the callable that target.name(...) dispatches to: the most
// derived class' table first, then each class of the mro in turn.
func Resolve(f *Frame, target *Object, name string) (*CallableDescriptor, *BaseException) {
	if desc := target.typ.LookupMethod(name); desc != nil {
		return desc, nil
	}
	format := "'%s' object has no attribute '%s'"
	return nil, f.RaiseType(AttributeErrorType, fmt.Sprintf(format, target.typ.Name(), name))
}

// ResolveFrom implements super-call resolution: the walk of target's mro
// begins at the class immediately after start, so an override defined on
// start reaches the implementation it overrides and never itself.
func ResolveFrom(f *Frame, start *Type, target *Object, name string) (*CallableDescriptor, *BaseException) {
	mro := target.typ.mro
	i := 0
	for i < len(mro) && mro[i] != start {
		i++
	}
	if i == len(mro) {
		return nil, f.RaiseType(TypeErrorType, "super(type, obj): obj must be an instance or subtype of type")
	}
	for _, t := range mro[i+1:] {
		if desc := t.table.Lookup(name); desc != nil {
			return desc, nil
		}
	}
	return nil, f.RaiseType(AttributeErrorType, fmt.Sprintf("'super' object has no attribute '%s'", name))
}

// LookupFunction resolves a module level function by name.
func LookupFunction(f *Frame, m *Module, name string) (*CallableDescriptor, *BaseException) {
	if desc := m.typ.LookupMethod(name); desc != nil {
		return desc, nil
	}
	format := "'module' object '%s' has no attribute '%s'"
	return nil, f.RaiseType(AttributeErrorType, fmt.Sprintf(format, m.name, name))
}
