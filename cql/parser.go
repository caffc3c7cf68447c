package cql

import (
	"strconv"
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// Parse reads a CQL filter into a tree.
//
// Precedence from loosest to tightest is OR, AND, NOT, then predicates.
// AND and OR chains nest to the left: "a AND b AND c" yields
// and(and(a, b), c). NOT applies to the single predicate or parenthesised
// group that follows it.
func Parse(text string) (Node, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenEnd {
		return nil, &TrailingTokensError{Tokens: p.tokens[p.pos : len(p.tokens)-1]}
	}
	return n, nil
}

// MustParse is like Parse but panics on error. It is meant for filters
// known at compile time.
func MustParse(text string) Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEnd {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt TokenType) (Token, error) {
	t := p.next()
	if t.Type != tt {
		return t, &SyntaxError{Token: t, Msg: "expected " + string(tt)}
	}
	return t, nil
}

func (p *parser) isLogical(op string) bool {
	t := p.peek()
	return t.Type == TokenLogical && strings.EqualFold(t.Text, op)
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isLogical("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: TypeOr, Filters: []Node{left, right}}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isLogical("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: TypeAnd, Filters: []Node{left, right}}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().Type != TokenNot {
		return p.parsePrimary()
	}
	p.next()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return Not(operand), nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.peek().Type {
	case TokenInclude:
		p.next()
		return &Include{}, nil
	case TokenLParen:
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return n, nil
	case TokenSpatial:
		return p.parseSpatial()
	}
	return p.parsePredicate()
}

func (p *parser) parsePredicate() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t := p.peek()
	switch t.Type {
	case TokenComparison:
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: comparisonOps[strings.ToUpper(t.Text)], Args: []Node{left, right}}, nil
	case TokenBetween:
		p.next()
		lower, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if !p.isLogical("AND") {
			return nil, &SyntaxError{Token: p.peek(), Msg: "expected AND in BETWEEN"}
		}
		p.next()
		upper, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: OpBetween, Args: []Node{left, lower, upper}}, nil
	case TokenIsNull:
		p.next()
		return &Comparison{Op: OpIsNull, Args: []Node{left}}, nil
	}

	// A bare function call is a predicate on its own, e.g. InArray(1, a).
	if _, ok := left.(*Func); ok {
		return left, nil
	}
	return nil, &SyntaxError{Token: t, Msg: "expected comparison"}
}

func (p *parser) parseOperand() (Node, error) {
	t := p.peek()
	switch t.Type {
	case TokenProperty:
		p.next()
		return &Property{Name: propertyName(t.Text)}, nil
	case TokenValue:
		p.next()
		return literal(t)
	case TokenFunction:
		return p.parseFunc()
	case TokenGeometry:
		p.next()
		g, err := geometry.ParseWKT(t.Text)
		if err != nil {
			return nil, &SyntaxError{Token: t, Msg: err.Error()}
		}
		return &Geometry{Geom: g}, nil
	}
	return nil, &SyntaxError{Token: t, Msg: "unexpected " + string(t.Type)}
}

func (p *parser) parseFunc() (Node, error) {
	name := p.next()
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &Func{Name: name.Text, Args: args}, nil
}

// parseArgs reads a parenthesised, comma separated argument list.
func (p *parser) parseArgs() ([]Node, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	if p.peek().Type == TokenRParen {
		p.next()
		return nil, nil
	}
	var args []Node
	for {
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseSpatial() (Node, error) {
	t := p.next()
	op := SpatialOp(strings.ToUpper(t.Text))
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	switch op {
	case OpBBox:
		if len(args) != 5 && len(args) != 6 {
			return nil, &SyntaxError{Token: t, Msg: "BBOX takes a property and four bounds"}
		}
		n := &BBox{Property: args[0]}
		for i := range 4 {
			f, ok := number(args[i+1])
			if !ok {
				return nil, &SyntaxError{Token: t, Msg: "BBOX bounds must be numbers"}
			}
			n.Bounds[i] = f
		}
		if len(args) == 6 {
			lit, ok := args[5].(*Literal)
			var crs string
			if ok {
				crs, ok = lit.Value.(string)
			}
			if !ok {
				return nil, &SyntaxError{Token: t, Msg: "BBOX CRS must be a string"}
			}
			n.CRS = crs
		}
		return n, nil
	case OpDWithin:
		if len(args) != 3 && len(args) != 4 {
			return nil, &SyntaxError{Token: t, Msg: "DWITHIN takes a property, a geometry and a distance"}
		}
		distance, ok := number(args[2])
		if !ok {
			return nil, &SyntaxError{Token: t, Msg: "DWITHIN distance must be a number"}
		}
		n := &DWithin{Property: args[0], Geometry: args[1], Distance: distance}
		if len(args) == 4 {
			switch u := args[3].(type) {
			case *Property:
				n.Units = u.Name
			case *Literal:
				n.Units, _ = u.Value.(string)
			}
		}
		return n, nil
	}

	if len(args) != 2 {
		return nil, &SyntaxError{Token: t, Msg: string(op) + " takes two arguments"}
	}
	return &Spatial{Op: op, Args: args}, nil
}

func number(n Node) (float64, bool) {
	lit, ok := n.(*Literal)
	if !ok {
		return 0, false
	}
	f, ok := lit.Value.(float64)
	return f, ok
}

func literal(t Token) (Node, error) {
	text := t.Text
	switch {
	case strings.HasPrefix(text, "'"):
		return &Literal{Value: strings.ReplaceAll(text[1:len(text)-1], "''", "'")}, nil
	case strings.EqualFold(text, "true"):
		return &Literal{Value: true}, nil
	case strings.EqualFold(text, "false"):
		return &Literal{Value: false}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &SyntaxError{Token: t, Msg: "invalid number"}
	}
	return &Literal{Value: f}, nil
}

// propertyName strips the double quotes of a quoted identifier.
func propertyName(text string) string {
	if len(text) >= 2 && text[0] == '"' {
		return strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)
	}
	return text
}
