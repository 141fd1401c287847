// Package expr implements the sandboxed expression evaluator behavior
// conditions and emotion transitions are written against. The grammar is
// deliberately closed: arithmetic, comparison, boolean operators, dotted
// identifier lookups into a Context, and the fixed function set
// {clamp, min, max, abs, floor, ceil, round, sqrt, exp, log, sigmoid, lerp,
// mix}. There is no general-purpose evaluation: no user-defined functions,
// no loops, no reflection.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/embergrove/murmur/internal/rng"
)

// ============================================================================
// Errors
// ============================================================================

var (
	ErrUnexpectedToken = errors.New("expr: unexpected token")
	ErrUnknownFunction = errors.New("expr: unknown function")
	ErrArity           = errors.New("expr: wrong number of arguments")
	ErrUnknownKey      = errors.New("expr: unknown key")
)

// Context resolves dotted-path identifiers (e.g. "user.silence",
// "emotion.arousal") to values. It is the only way an expression reaches
// outside state; Resolve returns ok=false for an unknown key rather than
// panicking, letting the caller decide policy (spec.md treats an unknown
// key in a trigger predicate as "false", not an error).
type Context interface {
	Resolve(path string) (value float64, ok bool)
}

// MapContext is a flat Context backed by a dotted-path map, the shape
// triggerContext uses throughout the kernel.
type MapContext map[string]float64

func (m MapContext) Resolve(path string) (float64, bool) {
	v, ok := m[path]
	return v, ok
}

// Expr is a parsed, reusable expression tree.
type Expr struct {
	root node
	src  string
}

// Parse compiles src into an Expr. Parsing never evaluates anything, so a
// syntactically valid expression referencing an unknown key still parses;
// the unknown key is only discovered (and reported as Unevaluable) at Eval
// time.
func Parse(src string) (*Expr, error) {
	p := &parser{toks: tokenize(src), src: src}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("%w: trailing input at %q", ErrUnexpectedToken, p.toks[p.pos].text)
	}
	return &Expr{root: n, src: src}, nil
}

// MustParse parses src, panicking on error. Intended for literal
// expressions compiled once at package-init time, not for user input.
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval evaluates the expression against ctx. A reference to an unknown key
// resolves to false for predicate position and 0 for arithmetic position,
// and sets unevaluable=true so the caller can emit a StateMachineViolation
// diagnostic without failing the whole expression.
func (e *Expr) Eval(ctx Context) (result float64, unevaluable bool) {
	ev := &evaluator{ctx: ctx}
	v := ev.eval(e.root)
	return v, ev.unevaluable
}

// Bool evaluates the expression and interprets the result as a predicate:
// nonzero is true.
func (e *Expr) Bool(ctx Context) (result bool, unevaluable bool) {
	v, unk := e.Eval(ctx)
	return v != 0, unk
}

func (e *Expr) String() string { return e.src }

// ============================================================================
// Lexer
// ============================================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(src string) []token {
	var toks []token
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case isDigit(c):
			j := i
			for j < n && (isDigit(src[j]) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			op, width := matchOp(src[i:])
			toks = append(toks, token{tokOp, op})
			i += width
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) || c == '.' }

func matchOp(s string) (string, int) {
	two := map[string]bool{"&&": true, "||": true, "==": true, "!=": true, ">=": true, "<=": true}
	if len(s) >= 2 && two[s[:2]] {
		return s[:2], 2
	}
	return s[:1], 1
}

// ============================================================================
// Parser (recursive descent, precedence climbing)
// ============================================================================

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().text == "||" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binOp{op: "||", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().text == "&&" {
		p.advance()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = &binOp{op: "&&", l: left, r: right}
	}
	return left, nil
}

var compareOps = map[string]bool{">": true, "<": true, ">=": true, "<=": true, "==": true, "!=": true}

func (p *parser) parseCompare() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokOp && compareOps[p.peek().text] {
		op := p.advance().text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &binOp{op: op, l: left, r: right}, nil
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.advance().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binOp{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.advance().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binOp{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokOp && (p.peek().text == "-" || p.peek().text == "!") {
		op := p.advance().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryOp{op: op, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.advance()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrUnexpectedToken, t.text)
		}
		return &literal{v: v}, nil
	case tokIdent:
		p.advance()
		if p.peek().kind == tokLParen {
			return p.parseCall(t.text)
		}
		return &ident{path: t.text}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("%w: expected )", ErrUnexpectedToken)
		}
		p.advance()
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedToken, t.text)
	}
}

func (p *parser) parseCall(name string) (node, error) {
	if _, ok := functions[strings.ToLower(name)]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	p.advance() // consume '('
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind == tokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.peek().kind != tokRParen {
		return nil, fmt.Errorf("%w: expected )", ErrUnexpectedToken)
	}
	p.advance()
	return &call{name: strings.ToLower(name), args: args}, nil
}

// ============================================================================
// AST + evaluation
// ============================================================================

type node interface{}

type literal struct{ v float64 }
type ident struct{ path string }
type binOp struct {
	op   string
	l, r node
}
type unaryOp struct {
	op      string
	operand node
}
type call struct {
	name string
	args []node
}

type fn struct {
	arity int // exact number of arguments a call must supply
	apply func(args []float64) float64
}

var functions = map[string]fn{
	"clamp":   {3, func(a []float64) float64 { return rng.Clamp(a[0], a[1], a[2]) }},
	"min":     {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"max":     {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"abs":     {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"floor":   {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":    {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"round":   {1, func(a []float64) float64 { return math.Round(a[0]) }},
	"sqrt":    {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"exp":     {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"log":     {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"sigmoid": {1, func(a []float64) float64 { return rng.Sigmoid(a[0]) }},
	"lerp":    {3, func(a []float64) float64 { return rng.Lerp(a[0], a[1], a[2]) }},
	"mix":     {3, func(a []float64) float64 { return rng.Mix(a[0], a[1], a[2]) }},
}

type evaluator struct {
	ctx         Context
	unevaluable bool
}

func (e *evaluator) eval(n node) float64 {
	switch v := n.(type) {
	case *literal:
		return v.v
	case *ident:
		val, ok := e.ctx.Resolve(v.path)
		if !ok {
			e.unevaluable = true
			return 0
		}
		return val
	case *unaryOp:
		operand := e.eval(v.operand)
		switch v.op {
		case "-":
			return -operand
		case "!":
			if operand == 0 {
				return 1
			}
			return 0
		}
	case *binOp:
		return e.evalBinOp(v)
	case *call:
		f := functions[v.name]
		if len(v.args) != f.arity {
			e.unevaluable = true
			return 0
		}
		args := make([]float64, len(v.args))
		for i, a := range v.args {
			args[i] = e.eval(a)
		}
		return f.apply(args)
	}
	return 0
}

func (e *evaluator) evalBinOp(b *binOp) float64 {
	switch b.op {
	case "&&":
		if e.eval(b.l) != 0 && e.eval(b.r) != 0 {
			return 1
		}
		return 0
	case "||":
		if e.eval(b.l) != 0 || e.eval(b.r) != 0 {
			return 1
		}
		return 0
	}
	l, r := e.eval(b.l), e.eval(b.r)
	switch b.op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		if r == 0 {
			e.unevaluable = true
			return 0
		}
		return l / r
	case ">":
		return boolToFloat(l > r)
	case "<":
		return boolToFloat(l < r)
	case ">=":
		return boolToFloat(l >= r)
	case "<=":
		return boolToFloat(l <= r)
	case "==":
		return boolToFloat(l == r)
	case "!=":
		return boolToFloat(l != r)
	}
	return 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
