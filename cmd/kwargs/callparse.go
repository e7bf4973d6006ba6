package main

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"github.com/rsl-org/kwargs/kwargs"
)

// Position is a 1-based line and column in call text.
type Position struct {
	Line   int
	Column int
}

// callArg is one argument of a parsed call. Name is empty for positional
// arguments.
type callArg struct {
	Name     string
	Value    any
	Pos      Position
	ValuePos Position
}

type callExpr struct {
	Source string
	Name   string
	Args   []callArg
	Close  Position
}

type callSyntaxError struct {
	Source string
	Pos    Position
	Msg    string
}

func (e *callSyntaxError) Error() string {
	frame := formatCodeFrame(e.Source, e.Pos)
	if frame == "" {
		return "syntax error: " + e.Msg
	}
	return "syntax error: " + e.Msg + "\n" + frame
}

type callToken struct {
	pos token.Pos
	tok token.Token
	lit string
}

// parseCall reads `name(v1, k1=v2, ...)`. Values use Go literal syntax:
// numbers, strings, runes, true/false/nil and []T{...} composite literals.
// Positional arguments must precede keyword arguments.
func parseCall(src string) (*callExpr, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("call", -1, len(src))
	position := func(pos token.Pos) Position {
		p := file.Position(pos)
		return Position{Line: p.Line, Column: p.Column}
	}
	fail := func(pos token.Pos, format string, args ...any) error {
		p := Position{Line: 1, Column: len(src) + 1}
		if pos.IsValid() {
			p = position(pos)
		}
		return &callSyntaxError{Source: src, Pos: p, Msg: fmt.Sprintf(format, args...)}
	}

	var scanErr *callSyntaxError
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		if scanErr == nil {
			scanErr = &callSyntaxError{Source: src, Pos: Position{Line: pos.Line, Column: pos.Column}, Msg: msg}
		}
	}, 0)
	var toks []callToken
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			toks = append(toks, callToken{pos: pos, tok: tok})
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, callToken{pos: pos, tok: tok, lit: lit})
	}
	if scanErr != nil {
		return nil, scanErr
	}

	i := 0
	peek := func() callToken { return toks[i] }
	next := func() callToken {
		t := toks[i]
		if i < len(toks)-1 {
			i++
		}
		return t
	}

	call := &callExpr{Source: src}
	first := next()
	if first.tok != token.IDENT {
		return nil, fail(first.pos, "expected callable name, found %s", describeToken(first))
	}
	name := first.lit
	for peek().tok == token.PERIOD {
		next()
		part := next()
		if part.tok != token.IDENT {
			return nil, fail(part.pos, "expected name after '.', found %s", describeToken(part))
		}
		name += "." + part.lit
	}
	call.Name = name

	if open := next(); open.tok != token.LPAREN {
		return nil, fail(open.pos, "expected '(', found %s", describeToken(open))
	}

	sawKeyword := false
	for peek().tok != token.RPAREN {
		start := peek()
		if start.tok == token.EOF {
			return nil, fail(start.pos, "missing ')'")
		}
		arg := callArg{Pos: position(start.pos)}
		if start.tok == token.IDENT && toks[i+1].tok == token.ASSIGN {
			arg.Name = start.lit
			next()
			next()
			sawKeyword = true
		} else if sawKeyword {
			return nil, fail(start.pos, "positional argument after keyword argument")
		}

		valueStart := peek()
		depth := 0
	value:
		for {
			switch peek().tok {
			case token.LPAREN, token.LBRACK, token.LBRACE:
				depth++
			case token.RPAREN, token.RBRACK, token.RBRACE:
				if depth == 0 {
					break value
				}
				depth--
			case token.COMMA:
				if depth == 0 {
					break value
				}
			case token.EOF:
				break value
			}
			next()
		}
		end := peek()
		if end.tok == token.EOF {
			return nil, fail(end.pos, "missing ')'")
		}
		if valueStart.pos == end.pos {
			return nil, fail(valueStart.pos, "missing value")
		}
		text := src[file.Offset(valueStart.pos):file.Offset(end.pos)]
		arg.ValuePos = position(valueStart.pos)
		v, err := parseValue(strings.TrimSpace(text))
		if err != nil {
			return nil, fail(valueStart.pos, "%v", err)
		}
		arg.Value = v
		call.Args = append(call.Args, arg)

		if peek().tok == token.COMMA {
			next()
		} else if peek().tok != token.RPAREN {
			t := peek()
			return nil, fail(t.pos, "expected ',' or ')', found %s", describeToken(t))
		}
	}
	closeTok := next()
	call.Close = position(closeTok.pos)
	if trailing := next(); trailing.tok != token.EOF {
		return nil, fail(trailing.pos, "unexpected %s after call", describeToken(trailing))
	}
	return call, nil
}

func describeToken(t callToken) string {
	switch {
	case t.tok == token.EOF:
		return "end of input"
	case t.lit != "":
		return fmt.Sprintf("%q", t.lit)
	default:
		return fmt.Sprintf("'%s'", t.tok)
	}
}

// split separates positional values from keyword arguments.
func (c *callExpr) split() ([]any, []kwargs.Named) {
	var positional []any
	var named []kwargs.Named
	for _, arg := range c.Args {
		if arg.Name == "" {
			positional = append(positional, arg.Value)
			continue
		}
		named = append(named, kwargs.Arg(arg.Name, arg.Value))
	}
	return positional, named
}

func parseValue(text string) (any, error) {
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", text)
	}
	return evalValue(expr)
}

func evalValue(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		if e.Name == "nil" {
			return nil, nil
		}
	case *ast.CompositeLit:
		return evalSlice(e)
	case *ast.BasicLit:
		if e.Kind == token.CHAR {
			c, err := evalConstant(e)
			if err != nil {
				return nil, err
			}
			n, _ := constant.Int64Val(c)
			return rune(n), nil
		}
	}
	c, err := evalConstant(expr)
	if err != nil {
		return nil, err
	}
	return constantValue(c)
}

func evalSlice(lit *ast.CompositeLit) (any, error) {
	typeName := types.ExprString(lit.Type)
	t, err := parseTypeName(typeName)
	if err != nil {
		return nil, err
	}
	if t.Kind() != reflect.Slice {
		return nil, fmt.Errorf("composite literal of %s is not supported", typeName)
	}
	out := reflect.MakeSlice(t, len(lit.Elts), len(lit.Elts))
	for i, elt := range lit.Elts {
		if _, keyed := elt.(*ast.KeyValueExpr); keyed {
			return nil, fmt.Errorf("keyed elements are not supported")
		}
		v, err := evalValue(elt)
		if err != nil {
			return nil, err
		}
		converted, err := kwargs.Convert(v, t.Elem())
		if err != nil {
			return nil, fmt.Errorf("element %d of %s: %w", i, typeName, err)
		}
		out.Index(i).Set(converted)
	}
	return out.Interface(), nil
}

func evalConstant(expr ast.Expr) (constant.Value, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		c := constant.MakeFromLiteral(e.Value, e.Kind, 0)
		if c.Kind() == constant.Unknown {
			return nil, fmt.Errorf("invalid literal %s", e.Value)
		}
		return c, nil
	case *ast.Ident:
		switch e.Name {
		case "true":
			return constant.MakeBool(true), nil
		case "false":
			return constant.MakeBool(false), nil
		}
	case *ast.ParenExpr:
		return evalConstant(e.X)
	case *ast.UnaryExpr:
		if e.Op == token.SUB || e.Op == token.ADD {
			x, err := evalConstant(e.X)
			if err != nil {
				return nil, err
			}
			if x.Kind() != constant.Int && x.Kind() != constant.Float && x.Kind() != constant.Complex {
				return nil, fmt.Errorf("operator %s not defined on %s", e.Op, x)
			}
			return constant.UnaryOp(e.Op, x, 0), nil
		}
	}
	return nil, fmt.Errorf("unsupported value %s", types.ExprString(expr))
}

// constantValue gives c the Go type an untyped constant of its kind defaults
// to, so the binder sees int, float64, string, and bool values.
func constantValue(c constant.Value) (any, error) {
	switch c.Kind() {
	case constant.Bool:
		return constant.BoolVal(c), nil
	case constant.String:
		return constant.StringVal(c), nil
	case constant.Int:
		if n, exact := constant.Int64Val(c); exact {
			if int64(int(n)) == n {
				return int(n), nil
			}
			return n, nil
		}
		if n, exact := constant.Uint64Val(c); exact {
			return n, nil
		}
		return nil, fmt.Errorf("integer %s overflows uint64", c)
	case constant.Float:
		f, _ := constant.Float64Val(c)
		return f, nil
	case constant.Complex:
		re, _ := constant.Float64Val(constant.Real(c))
		im, _ := constant.Float64Val(constant.Imag(c))
		return complex(re, im), nil
	default:
		return nil, fmt.Errorf("unsupported constant %s", c)
	}
}
