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

// Package shell plays the dynamic caller: it runs statements such as
//
//	import test_funcmapper
//	n = test_funcmapper.new_style_class()
//	n.func_keyword(4, 5, name=6)
//
// against the modules registered with the bridge.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pibridge/pibridge/runtime"
)

// Interp executes statements in a persistent namespace.
type Interp struct {
	f       *pibridge.Frame
	out     io.Writer
	globals *pibridge.Dict
	modules map[*pibridge.Object]*pibridge.Module
	// Echo makes expression statements print the repr of results other
	// than None, the way an interactive prompt does.
	Echo bool
}

// New returns an interpreter that runs calls in f and writes output to out.
func New(f *pibridge.Frame, out io.Writer) *Interp {
	in := &Interp{
		f:       f,
		out:     out,
		globals: pibridge.NewDict(),
		modules: map[*pibridge.Object]*pibridge.Module{},
	}
	in.globals.SetItem("print", pibridge.NewFunction("print", "Writes its arguments separated by spaces.", in.builtinPrint).ToObject())
	in.globals.SetItem("assert_raises", pibridge.NewFunction("assert_raises", "Calls fn(*args) and checks that it raises exc.", in.builtinAssertRaises).ToObject())
	return in
}

// Exec parses and runs src, stopping at the first statement that fails.
// Exceptions are returned as *pibridge.BaseException.
func (in *Interp) Exec(src string) error {
	stmts, err := Parse(src)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if raised := in.execStmt(stmt); raised != nil {
			in.f.RestoreExc(nil)
			return raised
		}
	}
	return nil
}

// Lookup returns the value bound to name, or nil.
func (in *Interp) Lookup(name string) *pibridge.Object {
	if v := in.globals.GetItem(name); v != nil {
		return v
	}
	return pibridge.Builtins.GetItem(name)
}

// Names returns the names bound by the session, sorted.
func (in *Interp) Names() []string {
	names := in.globals.Keys()
	sort.Strings(names)
	return names
}

func (in *Interp) execStmt(stmt Stmt) *pibridge.BaseException {
	switch s := stmt.(type) {
	case *ImportStmt:
		m, raised := pibridge.ImportModule(in.f, s.Module)
		if raised != nil {
			return raised
		}
		in.modules[m.ToObject()] = m
		in.globals.SetItem(s.Module, m.ToObject())
	case *AssignStmt:
		v, raised := in.eval(s.Value)
		if raised != nil {
			return raised
		}
		switch target := s.Target.(type) {
		case *Name:
			in.globals.SetItem(target.ID, v)
		case *Attr:
			x, raised := in.eval(target.X)
			if raised != nil {
				return raised
			}
			return pibridge.SetAttr(in.f, x, target.Name, v)
		}
	case *DelStmt:
		x, raised := in.eval(s.Target.X)
		if raised != nil {
			return raised
		}
		return pibridge.DelAttr(in.f, x, s.Target.Name)
	case *ExprStmt:
		v, raised := in.eval(s.X)
		if raised != nil {
			return raised
		}
		if in.Echo && v != pibridge.None {
			r, raised := pibridge.Repr(in.f, v)
			if raised != nil {
				return raised
			}
			fmt.Fprintln(in.out, r.Value())
		}
	}
	return nil
}

func (in *Interp) eval(x Expr) (*pibridge.Object, *pibridge.BaseException) {
	switch e := x.(type) {
	case *IntLit:
		return pibridge.NewInt(e.Value).ToObject(), nil
	case *FloatLit:
		return pibridge.NewFloat(e.Value).ToObject(), nil
	case *StrLit:
		return pibridge.NewStr(e.Value).ToObject(), nil
	case *TupleLit:
		elems, raised := in.evalList(e.Elems)
		if raised != nil {
			return nil, raised
		}
		return pibridge.NewTuple(elems...).ToObject(), nil
	case *Name:
		if v := in.Lookup(e.ID); v != nil {
			return v, nil
		}
		return nil, in.f.RaiseType(pibridge.NameErrorType, fmt.Sprintf("name '%s' is not defined", e.ID))
	case *Attr:
		o, raised := in.eval(e.X)
		if raised != nil {
			return nil, raised
		}
		return pibridge.GetAttr(in.f, o, e.Name, nil)
	case *Call:
		return in.evalCall(e)
	}
	return nil, in.f.RaiseType(pibridge.SystemErrorType, fmt.Sprintf("cannot evaluate %T", x))
}

func (in *Interp) evalList(xs []Expr) ([]*pibridge.Object, *pibridge.BaseException) {
	objs := make([]*pibridge.Object, len(xs))
	for i, x := range xs {
		o, raised := in.eval(x)
		if raised != nil {
			return nil, raised
		}
		objs[i] = o
	}
	return objs, nil
}

// evalCall sends x.name(...) straight to the call adapter when name is a
// registered callable that the instance does not shadow. Everything else
// goes through attribute lookup and a generic call.
func (in *Interp) evalCall(c *Call) (*pibridge.Object, *pibridge.BaseException) {
	args, raised := in.evalList(c.Args)
	if raised != nil {
		return nil, raised
	}
	kwargs := make(pibridge.KWArgs, len(c.KWArgs))
	for i, kw := range c.KWArgs {
		v, raised := in.eval(kw.Value)
		if raised != nil {
			return nil, raised
		}
		kwargs[i] = pibridge.KWArg{Name: kw.Name, Value: v}
	}
	if attr, ok := c.Fn.(*Attr); ok {
		target, raised := in.eval(attr.X)
		if raised != nil {
			return nil, raised
		}
		if m := in.modules[target]; m != nil && m.ToObject().Type().LookupMethod(attr.Name) != nil {
			return pibridge.CallFunction(in.f, m, attr.Name, args, kwargs)
		}
		if target.Type().LookupMethod(attr.Name) != nil && !shadowed(target, attr.Name) {
			return pibridge.CallMethod(in.f, target, attr.Name, args, kwargs)
		}
		fn, raised := pibridge.GetAttr(in.f, target, attr.Name, nil)
		if raised != nil {
			return nil, raised
		}
		return fn.Call(in.f, args, kwargs)
	}
	fn, raised := in.eval(c.Fn)
	if raised != nil {
		return nil, raised
	}
	return fn.Call(in.f, args, kwargs)
}

func shadowed(o *pibridge.Object, name string) bool {
	d := o.Dict()
	return d != nil && d.GetItem(name) != nil
}

func (in *Interp) builtinPrint(f *pibridge.Frame, args pibridge.Args, kwargs pibridge.KWArgs) (*pibridge.Object, *pibridge.BaseException) {
	parts := make([]string, len(args))
	for i, arg := range args {
		s, raised := pibridge.ToStr(f, arg)
		if raised != nil {
			return nil, raised
		}
		parts[i] = s.Value()
	}
	fmt.Fprintln(in.out, strings.Join(parts, " "))
	return pibridge.None, nil
}

func (in *Interp) builtinAssertRaises(f *pibridge.Frame, args pibridge.Args, kwargs pibridge.KWArgs) (*pibridge.Object, *pibridge.BaseException) {
	var want *pibridge.Type
	if len(args) >= 2 {
		want, _ = pibridge.ToType(args[0])
	}
	if want == nil {
		return nil, f.RaiseType(pibridge.TypeErrorType, "assert_raises(exc, fn, *args) requires an exception class and a callable")
	}
	_, raised := args[1].Call(f, args[2:], kwargs)
	if raised == nil {
		return nil, f.RaiseType(pibridge.AssertionErrorType, fmt.Sprintf("%s not raised", want.Name()))
	}
	if !pibridge.IsInstance(raised.ToObject(), want) {
		return nil, raised
	}
	f.RestoreExc(nil)
	return raised.ToObject(), nil
}
