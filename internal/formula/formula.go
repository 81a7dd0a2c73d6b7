// Package formula evaluates the arithmetic expressions stored on catalog cost
// items. Only numeric literals, named variables, + - * / and parentheses are
// understood; nothing outside the supplied variable map is reachable.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

const maxDepth = 64

var (
	// ErrSyntax wraps every tokenizer and parser failure.
	ErrSyntax = errors.New("formula syntax error")
	// ErrUnknownVariable is returned by Eval when a name has no value.
	ErrUnknownVariable = errors.New("unknown formula variable")
	// ErrNotFinite is returned for division by zero and overflow.
	ErrNotFinite = errors.New("formula result is not finite")
)

// Vars maps variable names to their current values.
type Vars map[string]float64

// Expr is a parsed formula ready to be evaluated many times.
type Expr struct {
	src  string
	root node
}

// Parse compiles src into an Expr.
func Parse(src string) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	root, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, t.text, t.pos)
	}

	return &Expr{src: src, root: root}, nil
}

// Evaluate parses and evaluates src in one step.
func Evaluate(src string, vars Vars) (float64, error) {
	expr, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return expr.Eval(vars)
}

// String returns the source text the expression was parsed from.
func (e *Expr) String() string {
	return e.src
}

// Eval computes the expression against vars. A non-finite result is an error.
func (e *Expr) Eval(vars Vars) (float64, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// Vars returns the sorted, de-duplicated variable names the expression reads.
func (e *Expr) Vars() []string {
	seen := make(map[string]struct{})
	collectVars(e.root, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type node interface {
	eval(Vars) (float64, error)
}

type number float64

func (n number) eval(Vars) (float64, error) {
	return float64(n), nil
}

type variable string

func (v variable) eval(vars Vars) (float64, error) {
	value, ok := vars[string(v)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, string(v))
	}
	return value, nil
}

type unary struct {
	op byte
	x  node
}

func (u unary) eval(vars Vars) (float64, error) {
	x, err := u.x.eval(vars)
	if err != nil {
		return 0, err
	}
	if u.op == '-' {
		return -x, nil
	}
	return x, nil
}

type binary struct {
	op   byte
	l, r node
}

func (b binary) eval(vars Vars) (float64, error) {
	l, err := b.l.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := b.r.eval(vars)
	if err != nil {
		return 0, err
	}

	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		return l / r, nil
	}
}

func collectVars(n node, seen map[string]struct{}) {
	switch n := n.(type) {
	case variable:
		seen[string(n)] = struct{}{}
	case unary:
		collectVars(n.x, seen)
	case binary:
		collectVars(n.l, seen)
		collectVars(n.r, seen)
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expr := term (('+' | '-') term)*
func (p *parser) expr(depth int) (node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
	}

	left, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()
		right, err := p.term(depth)
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, l: left, r: right}
	}
}

// term := factor (('*' | '/') factor)*
func (p *parser) term(depth int) (node, error) {
	left, err := p.factor(depth)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/') {
			return left, nil
		}
		p.next()
		right, err := p.factor(depth)
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, l: left, r: right}
	}
}

// factor := ('+' | '-') factor | number | ident | '(' expr ')'
func (p *parser) factor(depth int) (node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
	}

	t := p.next()
	switch t.kind {
	case tokOp:
		if t.op != '+' && t.op != '-' {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, t.text, t.pos)
		}
		x, err := p.factor(depth + 1)
		if err != nil {
			return nil, err
		}
		return unary{op: t.op, x: x}, nil
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q at offset %d", ErrSyntax, t.text, t.pos)
		}
		return number(v), nil
	case tokIdent:
		return variable(t.text), nil
	case tokLParen:
		inner, err := p.expr(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at offset %d", ErrSyntax, closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of formula", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, t.text, t.pos)
	}
}
