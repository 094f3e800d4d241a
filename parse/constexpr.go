package parse

import (
	"math"
	"strings"

	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// ConstantInt is the value of an integer constant expression.
type ConstantInt struct {
	Val  int64
	Type ctype.Primitive
}

// constExpr evaluates a constant expression, as used for array
// dimensions, bit-field widths and enumerator values. Outside of a
// declarator an expression nested too deeply is reported here and
// evaluates to 0.
func (p *Parser) constExpr() (val int64, typ ctype.Primitive) {
	if p.declDepth == 0 {
		nesting, exprDepth := p.nesting, p.exprDepth
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			bo, ok := r.(declBreakout)
			if !ok {
				panic(r)
			}
			p.recoverTooComplex(bo, nesting, exprDepth, "Expression")
			val, typ = 0, ctype.Int
		}()
	}
	c := p.parseConditionalExpression()
	return c.Val, c.Type
}

// wrap truncates v to the range of t.
func wrap(v int64, t ctype.Primitive) int64 {
	switch t {
	case ctype.SChar:
		return int64(int8(v))
	case ctype.Char, ctype.UChar:
		return int64(uint8(v))
	case ctype.Short, ctype.Int:
		return int64(int16(v))
	case ctype.UShort, ctype.UInt:
		return int64(uint16(v))
	case ctype.Long:
		return int64(int32(v))
	case ctype.ULong:
		return int64(uint32(v))
	}
	return v
}

// promote applies the integer promotions for a 16 bit int.
func promote(t ctype.Primitive) ctype.Primitive {
	switch t {
	case ctype.Char, ctype.SChar, ctype.UChar, ctype.Short, ctype.Enum:
		return ctype.Int
	case ctype.UShort:
		return ctype.UInt
	case ctype.Int, ctype.UInt, ctype.Long, ctype.ULong:
		return t
	}
	return ctype.Int
}

var intRank = map[ctype.Primitive]int{
	ctype.Int:   0,
	ctype.UInt:  1,
	ctype.Long:  2,
	ctype.ULong: 3,
}

// usual returns the common type of a binary operation. long can hold every
// unsigned int, so the ranks are ordered int, unsigned, long, unsigned long.
func usual(a, b ctype.Primitive) ctype.Primitive {
	a, b = promote(a), promote(b)
	if intRank[a] >= intRank[b] {
		return a
	}
	return b
}

func boolConst(b bool) ConstantInt {
	if b {
		return ConstantInt{Val: 1, Type: ctype.Int}
	}
	return ConstantInt{Val: 0, Type: ctype.Int}
}

// intConstType returns the type of an integer literal.
func intConstType(s string, v int64) ctype.Primitive {
	digits := strings.TrimRight(s, "uUlL")
	suffix := strings.ToLower(s[len(digits):])
	unsigned := strings.Contains(suffix, "u")
	long := strings.Contains(suffix, "l")
	decimal := len(digits) == 1 || digits[0] != '0'
	if !long {
		if !unsigned && v <= math.MaxInt16 {
			return ctype.Int
		}
		if (unsigned || !decimal) && v <= math.MaxUint16 {
			return ctype.UInt
		}
	}
	if !unsigned && v <= math.MaxInt32 {
		return ctype.Long
	}
	return ctype.ULong
}

func (p *Parser) parseConditionalExpression() ConstantInt {
	c := p.parseLogicalOrExpression()
	if p.curt.Kind != scan.QUESTION {
		return c
	}
	p.next()
	p.enterExpr()
	a := p.parseConditionalExpression()
	p.expect(scan.COLON)
	b := p.parseConditionalExpression()
	p.exprDepth--
	t := usual(a.Type, b.Type)
	if c.Val != 0 {
		return ConstantInt{Val: wrap(a.Val, t), Type: t}
	}
	return ConstantInt{Val: wrap(b.Val, t), Type: t}
}

func (p *Parser) parseLogicalOrExpression() ConstantInt {
	l := p.parseLogicalAndExpression()
	for p.curt.Kind == scan.LOR {
		p.next()
		r := p.parseLogicalAndExpression()
		l = boolConst(l.Val != 0 || r.Val != 0)
	}
	return l
}

func (p *Parser) parseLogicalAndExpression() ConstantInt {
	l := p.parseInclusiveOrExpression()
	for p.curt.Kind == scan.LAND {
		p.next()
		r := p.parseInclusiveOrExpression()
		l = boolConst(l.Val != 0 && r.Val != 0)
	}
	return l
}

func (p *Parser) parseInclusiveOrExpression() ConstantInt {
	l := p.parseExclusiveOrExpression()
	for p.curt.Kind == scan.OR {
		p.next()
		r := p.parseExclusiveOrExpression()
		l = p.fold(scan.OR, l, r)
	}
	return l
}

func (p *Parser) parseExclusiveOrExpression() ConstantInt {
	l := p.parseAndExpression()
	for p.curt.Kind == scan.XOR {
		p.next()
		r := p.parseAndExpression()
		l = p.fold(scan.XOR, l, r)
	}
	return l
}

func (p *Parser) parseAndExpression() ConstantInt {
	l := p.parseEqualityExpression()
	for p.curt.Kind == scan.AND {
		p.next()
		r := p.parseEqualityExpression()
		l = p.fold(scan.AND, l, r)
	}
	return l
}

func (p *Parser) parseEqualityExpression() ConstantInt {
	l := p.parseRelationalExpression()
	for p.curt.Kind == scan.EQL || p.curt.Kind == scan.NEQ {
		op := p.curt.Kind
		p.next()
		r := p.parseRelationalExpression()
		l = p.fold(op, l, r)
	}
	return l
}

func (p *Parser) parseRelationalExpression() ConstantInt {
	l := p.parseShiftExpression()
	for p.curt.Kind == scan.GTR || p.curt.Kind == scan.LSS || p.curt.Kind == scan.LEQ || p.curt.Kind == scan.GEQ {
		op := p.curt.Kind
		p.next()
		r := p.parseShiftExpression()
		l = p.fold(op, l, r)
	}
	return l
}

func (p *Parser) parseShiftExpression() ConstantInt {
	l := p.parseAdditiveExpression()
	for p.curt.Kind == scan.SHL || p.curt.Kind == scan.SHR {
		op := p.curt.Kind
		p.next()
		r := p.parseAdditiveExpression()
		l = p.fold(op, l, r)
	}
	return l
}

func (p *Parser) parseAdditiveExpression() ConstantInt {
	l := p.parseMultiplicativeExpression()
	for p.curt.Kind == scan.ADD || p.curt.Kind == scan.SUB {
		op := p.curt.Kind
		p.next()
		r := p.parseMultiplicativeExpression()
		l = p.fold(op, l, r)
	}
	return l
}

func (p *Parser) parseMultiplicativeExpression() ConstantInt {
	l := p.parseCastExpression()
	for p.curt.Kind == scan.MUL || p.curt.Kind == scan.QUO || p.curt.Kind == scan.REM {
		op := p.curt.Kind
		pos := p.curt.Pos
		p.next()
		r := p.parseCastExpression()
		if op != scan.MUL && r.Val == 0 {
			if op == scan.QUO {
				p.errorf(pos, "Division by zero")
			} else {
				p.errorf(pos, "Modulo operation with zero")
			}
			l = ConstantInt{Val: 0, Type: usual(l.Type, r.Type)}
			continue
		}
		l = p.fold(op, l, r)
	}
	return l
}

// fold applies a binary operator to two constants.
func (p *Parser) fold(op scan.TokenKind, l, r ConstantInt) ConstantInt {
	t := usual(l.Type, r.Type)
	a, b := wrap(l.Val, t), wrap(r.Val, t)
	var v int64
	switch op {
	case scan.ADD:
		v = a + b
	case scan.SUB:
		v = a - b
	case scan.MUL:
		v = a * b
	case scan.QUO:
		v = a / b
	case scan.REM:
		v = a % b
	case scan.AND:
		v = a & b
	case scan.OR:
		v = a | b
	case scan.XOR:
		v = a ^ b
	case scan.SHL, scan.SHR:
		t = promote(l.Type)
		a = wrap(l.Val, t)
		if r.Val < 0 || r.Val > 31 {
			return ConstantInt{Val: 0, Type: t}
		}
		if op == scan.SHL {
			v = a << uint(r.Val)
		} else {
			v = a >> uint(r.Val)
		}
	case scan.EQL:
		return boolConst(a == b)
	case scan.NEQ:
		return boolConst(a != b)
	case scan.LSS:
		return boolConst(a < b)
	case scan.GTR:
		return boolConst(a > b)
	case scan.LEQ:
		return boolConst(a <= b)
	case scan.GEQ:
		return boolConst(a >= b)
	default:
		panic("internal error - unknown operator " + op.String())
	}
	return ConstantInt{Val: wrap(v, t), Type: t}
}

func (p *Parser) parseCastExpression() ConstantInt {
	if p.curt.Kind != scan.LPAREN || !p.isTypeStart(p.nextt) {
		return p.parseUnaryExpression()
	}
	pos := p.curt.Pos
	p.enterNesting()
	p.next()
	typ := p.ParseType()
	p.expect(scan.RPAREN)
	p.nesting--
	p.enterExpr()
	c := p.parseCastExpression()
	p.exprDepth--
	nd := typ.At(0)
	if nd.Kind != ctype.Base || !nd.Prim.IsInteger() {
		p.errorf(pos, "Constant integer expression expected")
		return ConstantInt{Val: c.Val, Type: ctype.Int}
	}
	t := nd.Prim
	if t == ctype.Enum {
		t = ctype.Int
		if nd.Tag != nil && nd.Tag.Underlying != ctype.NoPrim {
			t = nd.Tag.Underlying
		}
	}
	return ConstantInt{Val: wrap(c.Val, t), Type: t}
}

func (p *Parser) parseUnaryExpression() ConstantInt {
	switch op := p.curt.Kind; op {
	case scan.ADD, scan.SUB, scan.BNOT, scan.NOT:
		p.next()
		p.enterExpr()
		c := p.parseCastExpression()
		p.exprDepth--
		t := promote(c.Type)
		switch op {
		case scan.SUB:
			return ConstantInt{Val: wrap(-c.Val, t), Type: t}
		case scan.BNOT:
			return ConstantInt{Val: wrap(^c.Val, t), Type: t}
		case scan.NOT:
			return boolConst(c.Val == 0)
		}
		c.Type = t
		return c
	case scan.SIZEOF:
		return p.parseSizeof()
	}
	return p.parsePrimaryExpression()
}

func (p *Parser) parseSizeof() ConstantInt {
	pos := p.curt.Pos
	p.next()
	var typ ctype.Encoding
	if p.curt.Kind == scan.LPAREN && p.isTypeStart(p.nextt) {
		p.enterNesting()
		p.next()
		typ = p.ParseType()
		p.expect(scan.RPAREN)
		p.nesting--
	} else {
		p.enterExpr()
		c := p.parseUnaryExpression()
		p.exprDepth--
		typ = ctype.Of(c.Type)
	}
	if typ.IsFunc() || typ.IsIncomplete() {
		p.errorf(pos, "Cannot apply 'sizeof' to incomplete type '%s'", typ.Declare(""))
		return ConstantInt{Val: 1, Type: ctype.UInt}
	}
	return ConstantInt{Val: p.target.SizeOf(typ), Type: ctype.UInt}
}

func (p *Parser) parsePrimaryExpression() ConstantInt {
	t := p.curt
	switch t.Kind {
	case scan.INT_CONSTANT:
		p.next()
		v, err := scan.ParseInt(t.Val)
		if err != nil {
			p.errorf(t.Pos, "%s", err)
			return ConstantInt{Val: 0, Type: ctype.Int}
		}
		typ := intConstType(t.Val, v)
		return ConstantInt{Val: wrap(v, typ), Type: typ}
	case scan.CHAR_CONSTANT:
		p.next()
		v, err := scan.ParseChar(t.Val)
		if err != nil {
			p.errorf(t.Pos, "%s", err)
		}
		return ConstantInt{Val: wrap(v, ctype.Char), Type: ctype.Int}
	case scan.IDENT:
		p.next()
		sym := p.syms.Lookup(t.Val)
		switch {
		case sym == nil:
			p.errorf(t.Pos, "Undefined symbol: '%s'", t.Val)
		case sym.Kind != SymEnumerator:
			p.errorf(t.Pos, "Constant expression expected")
		default:
			return ConstantInt{Val: sym.Value, Type: sym.Prim}
		}
		return ConstantInt{Val: 0, Type: ctype.Int}
	case scan.LPAREN:
		p.enterNesting()
		p.next()
		c := p.parseConditionalExpression()
		p.expect(scan.RPAREN)
		p.nesting--
		return c
	}
	p.errorf(t.Pos, "Expression expected")
	return ConstantInt{Val: 0, Type: ctype.Int}
}
