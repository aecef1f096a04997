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
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Stmt is a parsed statement.
type Stmt interface {
	stmt()
}

// Expr is a parsed expression.
type Expr interface {
	expr()
}

// ImportStmt is "import name".
type ImportStmt struct {
	Module string
}

// AssignStmt is "target = value" where target is a Name or an Attr.
type AssignStmt struct {
	Target Expr
	Value  Expr
}

// DelStmt is "del x.attr".
type DelStmt struct {
	Target *Attr
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	X Expr
}

func (*ImportStmt) stmt() {}
func (*AssignStmt) stmt() {}
func (*DelStmt) stmt()    {}
func (*ExprStmt) stmt()   {}

// Name refers to a variable or builtin.
type Name struct {
	ID string
}

// Attr is "x.name".
type Attr struct {
	X    Expr
	Name string
}

// Call is "fn(args..., key=value...)".
type Call struct {
	Fn     Expr
	Args   []Expr
	KWArgs []KeywordArg
}

// KeywordArg is one "key=value" in a call.
type KeywordArg struct {
	Name  string
	Value Expr
}

// IntLit is an integer literal.
type IntLit struct {
	Value int
}

// FloatLit is a float literal.
type FloatLit struct {
	Value float64
}

// StrLit is a string literal.
type StrLit struct {
	Value string
}

// TupleLit is "(a, b)" or "()".
type TupleLit struct {
	Elems []Expr
}

func (*Name) expr()     {}
func (*Attr) expr()     {}
func (*Call) expr()     {}
func (*IntLit) expr()   {}
func (*FloatLit) expr() {}
func (*StrLit) expr()   {}
func (*TupleLit) expr() {}

// SyntaxError reports a statement that could not be parsed.
type SyntaxError struct {
	Pos scanner.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

type parser struct {
	s      scanner.Scanner
	tok    rune
	lineno int
	err    *SyntaxError
}

// Parse parses src, one statement per line or separated by ';'. A '#'
// starts a comment that runs to the end of the line.
func Parse(src string) ([]Stmt, error) {
	var stmts []Stmt
	for i, line := range strings.Split(src, "\n") {
		lineStmts, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, lineStmts...)
	}
	return stmts, nil
}

func parseLine(line string, lineno int) ([]Stmt, error) {
	p := &parser{lineno: lineno}
	p.s.Init(strings.NewReader(line))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Whitespace = 1<<' ' | 1<<'\t' | 1<<'\r'
	p.s.Error = func(s *scanner.Scanner, msg string) {
		// Single quotes delimit strings, not runes.
		if msg != "invalid char literal" {
			p.fail(s.Position, msg)
		}
	}
	p.next()
	var stmts []Stmt
	for !p.atEnd() {
		if p.tok == ';' {
			p.next()
			continue
		}
		stmt := p.parseStmt()
		if p.err != nil {
			return nil, p.err
		}
		stmts = append(stmts, stmt)
		if !p.atEnd() && p.tok != ';' {
			p.failf("unexpected %s", p.describe())
			return nil, p.err
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return stmts, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) atEnd() bool {
	return p.tok == scanner.EOF || p.tok == '#' || p.err != nil
}

func (p *parser) pos() scanner.Position {
	pos := p.s.Position
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	return pos
}

func (p *parser) fail(pos scanner.Position, msg string) {
	if p.err == nil {
		pos.Line = p.lineno
		p.err = &SyntaxError{Pos: pos, Msg: msg}
	}
}

func (p *parser) failf(format string, args ...interface{}) {
	p.fail(p.pos(), fmt.Sprintf(format, args...))
}

func (p *parser) describe() string {
	if p.tok == scanner.EOF {
		return "end of line"
	}
	return strconv.Quote(p.s.TokenText())
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.failf("expected %q, found %s", tok, p.describe())
		return
	}
	p.next()
}

func (p *parser) ident() string {
	if p.tok != scanner.Ident {
		p.failf("expected name, found %s", p.describe())
		return ""
	}
	name := p.s.TokenText()
	p.next()
	return name
}

func (p *parser) parseStmt() Stmt {
	if p.tok == scanner.Ident {
		switch p.s.TokenText() {
		case "import":
			p.next()
			return &ImportStmt{Module: p.ident()}
		case "del":
			p.next()
			x := p.parseExpr()
			attr, ok := x.(*Attr)
			if !ok {
				p.failf("del needs an attribute")
				return nil
			}
			return &DelStmt{Target: attr}
		}
	}
	x := p.parseExpr()
	if p.tok != '=' {
		return &ExprStmt{X: x}
	}
	switch x.(type) {
	case *Name, *Attr:
	default:
		p.failf("cannot assign to expression")
		return nil
	}
	p.next()
	return &AssignStmt{Target: x, Value: p.parseExpr()}
}

func (p *parser) parseExpr() Expr {
	x := p.parseOperand()
	for p.err == nil {
		switch p.tok {
		case '.':
			p.next()
			x = &Attr{X: x, Name: p.ident()}
		case '(':
			x = p.parseCall(x)
		default:
			return x
		}
	}
	return x
}

func (p *parser) parseCall(fn Expr) Expr {
	p.next()
	call := &Call{Fn: fn}
	for p.err == nil && p.tok != ')' && p.tok != scanner.EOF {
		x := p.parseExpr()
		if name, ok := x.(*Name); ok && p.tok == '=' {
			p.next()
			call.KWArgs = append(call.KWArgs, KeywordArg{Name: name.ID, Value: p.parseExpr()})
		} else if len(call.KWArgs) > 0 {
			p.failf("positional argument follows keyword argument")
		} else {
			call.Args = append(call.Args, x)
		}
		if p.tok != ',' {
			break
		}
		p.next()
	}
	p.expect(')')
	return call
}

func (p *parser) parseOperand() Expr {
	neg := false
	if p.tok == '-' {
		neg = true
		p.next()
	}
	text := p.s.TokenText()
	switch p.tok {
	case scanner.Int:
		p.next()
		i, err := strconv.Atoi(text)
		if err != nil {
			p.failf("invalid integer %s", text)
			return nil
		}
		if neg {
			i = -i
		}
		return &IntLit{Value: i}
	case scanner.Float:
		p.next()
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.failf("invalid float %s", text)
			return nil
		}
		if neg {
			v = -v
		}
		return &FloatLit{Value: v}
	}
	if neg {
		p.failf("expected number after '-', found %s", p.describe())
		return nil
	}
	switch p.tok {
	case scanner.String, scanner.RawString:
		p.next()
		s, err := strconv.Unquote(text)
		if err != nil {
			p.failf("invalid string %s", text)
			return nil
		}
		return &StrLit{Value: s}
	case scanner.Char:
		p.next()
		s, err := unquoteSingle(text)
		if err != nil {
			p.failf("invalid string %s", text)
			return nil
		}
		return &StrLit{Value: s}
	case scanner.Ident:
		p.next()
		return &Name{ID: text}
	case '(':
		return p.parseTuple()
	}
	p.failf("unexpected %s", p.describe())
	return nil
}

// parseTuple parses "(x)" as x and "()", "(x,)" and "(x, y)" as tuples.
func (p *parser) parseTuple() Expr {
	p.next()
	var elems []Expr
	trailingComma := false
	for p.err == nil && p.tok != ')' && p.tok != scanner.EOF {
		elems = append(elems, p.parseExpr())
		trailingComma = false
		if p.tok != ',' {
			break
		}
		trailingComma = true
		p.next()
	}
	p.expect(')')
	if len(elems) == 1 && !trailingComma {
		return elems[0]
	}
	return &TupleLit{Elems: elems}
}

// unquoteSingle unquotes a single-quoted string literal such as 'it\'s'.
func unquoteSingle(text string) (string, error) {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return "", fmt.Errorf("unterminated string %s", text)
	}
	var b strings.Builder
	b.WriteByte('"')
	body := text[1 : len(text)-1]
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return strconv.Unquote(b.String())
}
