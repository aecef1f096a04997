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

package shell

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibridge/pibridge/ext/funcmapper"
	"github.com/pibridge/pibridge/runtime"
)

func TestParse(t *testing.T) {
	cases := []struct {
		src  string
		want []Stmt
	}{
		{"import test_funcmapper", []Stmt{&ImportStmt{Module: "test_funcmapper"}}},
		{"", nil},
		{"# just a comment", nil},
		{"x = 1; y = -2.5", []Stmt{
			&AssignStmt{Target: &Name{ID: "x"}, Value: &IntLit{Value: 1}},
			&AssignStmt{Target: &Name{ID: "y"}, Value: &FloatLit{Value: -2.5}},
		}},
		{`n.func_keyword(4, 5, name=6, value="seven")  # trailing`, []Stmt{
			&ExprStmt{X: &Call{
				Fn:   &Attr{X: &Name{ID: "n"}, Name: "func_keyword"},
				Args: []Expr{&IntLit{Value: 4}, &IntLit{Value: 5}},
				KWArgs: []KeywordArg{
					{Name: "name", Value: &IntLit{Value: 6}},
					{Name: "value", Value: &StrLit{Value: "seven"}},
				},
			}},
		}},
		{`d.value = 'it\'s "here"'`, []Stmt{
			&AssignStmt{Target: &Attr{X: &Name{ID: "d"}, Name: "value"}, Value: &StrLit{Value: `it's "here"`}},
		}},
		{"t = ((), (1,), (2), (3, 4))", []Stmt{
			&AssignStmt{Target: &Name{ID: "t"}, Value: &TupleLit{Elems: []Expr{
				&TupleLit{},
				&TupleLit{Elems: []Expr{&IntLit{Value: 1}}},
				&IntLit{Value: 2},
				&TupleLit{Elems: []Expr{&IntLit{Value: 3}, &IntLit{Value: 4}}},
			}}},
		}},
		{"del d.new_var", []Stmt{&DelStmt{Target: &Attr{X: &Name{ID: "d"}, Name: "new_var"}}}},
		{"f()()", []Stmt{&ExprStmt{X: &Call{Fn: &Call{Fn: &Name{ID: "f"}}}}}},
	}
	for _, cas := range cases {
		got, err := Parse(cas.src)
		require.NoError(t, err, cas.src)
		assert.Equal(t, cas.want, got, cas.src)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"f(", `line 1:3: expected ')', found end of line`},
		{"f(a,", `line 1:5: expected ')', found end of line`},
		{"(1,", `line 1:4: expected ')', found end of line`},
		{"x = ", "line 1:5: unexpected end of line"},
		{"1 = x", "line 1:3: cannot assign to expression"},
		{"f(a=1, 2)", "line 1:9: positional argument follows keyword argument"},
		{"del x", "line 1:6: del needs an attribute"},
		{"x = 1 2", `line 1:7: unexpected "2"`},
		{"import", "line 1:7: expected name, found end of line"},
		{"\n\nf(-x)", `line 3:4: expected number after '-', found "x"`},
		{`s = "open`, "line 1:5: literal not terminated"},
	}
	for _, cas := range cases {
		_, err := Parse(cas.src)
		require.Error(t, err, cas.src)
		assert.IsType(t, &SyntaxError{}, err)
		assert.Equal(t, cas.want, err.Error(), cas.src)
	}
}

func newInterp(t *testing.T) (*Interp, *bytes.Buffer) {
	t.Helper()
	funcmapper.Calls.Reset()
	pibridge.ResetModules()
	var out bytes.Buffer
	return New(pibridge.NewRootFrame(), &out), &out
}

func TestExecScenario(t *testing.T) {
	in, out := newInterp(t)
	src, err := os.ReadFile("testdata/funcmapper.pib")
	require.NoError(t, err)
	require.NoError(t, in.Exec(string(src)))
	assert.Equal(t, "raised RuntimeError('f0_exception::RuntimeError!!!',)\n"+
		"default value\n"+
		"a string\n"+
		"s42 6\n", out.String())
	assert.Equal(t, []string{
		"func args=() kwargs={}",
		"func args=(4, 5) kwargs={}",
		"func args=(4, 5) kwargs={'name': 6, 'value': 7}",
		"factory_old_style_class args=()",
		"old_style_class.func_noargs",
		"old_style_class.func_varargs args=(4,)",
		"old_style_class.func_keyword args=(4, 5) kwargs={'name': 6, 'value': 7}",
		"new_style_class args=() kwargs={}",
		"func_noargs",
		"func_varargs args=()",
		"func_varargs args=(4,)",
		"func_keyword args=() kwargs={}",
		"func_keyword args=() kwargs={'name': 6, 'value': 7}",
		"func_keyword args=(4, 5) kwargs={}",
		"func_keyword args=(4, 5) kwargs={'name': 6, 'value': 7}",
		"func_exception",
		"Derived.__init__",
		"new_style_class args=() kwargs={}",
		"derived_func",
		"func_noargs",
		"derived func_noargs",
		"func_varargs args=(4,)",
	}, funcmapper.Calls.Lines())
	assert.Equal(t, []string{"assert_raises", "d", "e", "n", "o", "print", "test_funcmapper"}, in.Names())
}

func TestExecErrors(t *testing.T) {
	in, _ := newInterp(t)
	require.NoError(t, in.Exec("import test_funcmapper\nn = test_funcmapper.new_style_class()"))
	cases := []struct {
		src     string
		wantExc *pibridge.Type
		wantMsg string
	}{
		{"import nothing_here", pibridge.ImportErrorType, "No module named nothing_here"},
		{"undefined()", pibridge.NameErrorType, "name 'undefined' is not defined"},
		{"n.func_exception()", pibridge.RuntimeErrorType, "f0_exception::RuntimeError!!!"},
		{"n.func_noargs(1)", pibridge.ArityErrorType, "func_noargs() takes no arguments (1 given)"},
		{"n.func_varargs(a=1)", pibridge.KeywordNotSupportedErrorType, "func_varargs() takes no keyword arguments"},
		{"n.nope()", pibridge.AttributeErrorType, "'new_style_class' object has no attribute 'nope'"},
		{"test_funcmapper.sum('x')", pibridge.TypeConversionErrorType, "sum() argument 1: an int is required (got str)"},
		{"assert_raises(ValueError, n.func_noargs)", pibridge.AssertionErrorType, "ValueError not raised"},
		{"assert_raises(ValueError, n.func_exception)", pibridge.RuntimeErrorType, "f0_exception::RuntimeError!!!"},
		{"assert_raises(1)", pibridge.TypeErrorType, "assert_raises(exc, fn, *args) requires an exception class and a callable"},
	}
	for _, cas := range cases {
		err := in.Exec(cas.src)
		require.Error(t, err, cas.src)
		exc, ok := err.(*pibridge.BaseException)
		require.True(t, ok, "%s returned %T", cas.src, err)
		assert.Same(t, cas.wantExc, exc.Type(), cas.src)
		assert.Equal(t, cas.wantMsg, exc.Message(), cas.src)
	}
}

func TestExecStopsAtFirstFailure(t *testing.T) {
	in, out := newInterp(t)
	err := in.Exec("print(1)\nundefined\nprint(2)")
	require.Error(t, err)
	assert.Equal(t, "1\n", out.String())
}

func TestEcho(t *testing.T) {
	in, out := newInterp(t)
	in.Echo = true
	require.NoError(t, in.Exec("import test_funcmapper"))
	require.NoError(t, in.Exec("test_funcmapper.func(1)"))
	require.NoError(t, in.Exec("test_funcmapper.sum(2, 3)"))
	require.NoError(t, in.Exec("(1, 'a', 2.5, None, True)"))
	assert.Equal(t, "5\n(1, 'a', 2.5, None, True)\n", out.String())
}

func TestShadowedMethod(t *testing.T) {
	in, _ := newInterp(t)
	require.NoError(t, in.Exec("import test_funcmapper\nn = test_funcmapper.new_style_class()\nn.func_noargs = print"))
	funcmapper.Calls.Reset()
	require.NoError(t, in.Exec("n.func_noargs()"))
	assert.Empty(t, funcmapper.Calls.Lines())
	require.NoError(t, in.Exec("del n.func_noargs\nn.func_noargs()"))
	assert.Equal(t, []string{"func_noargs"}, funcmapper.Calls.Lines())
}
