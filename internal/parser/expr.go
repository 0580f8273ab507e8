package parser

import (
	"strconv"

	"github.com/tekwizely/go-parsing/lexer/token"
	"github.com/tekwizely/go-parsing/parser"

	"github.com/amber-lang/amber-go/internal/ast"
	"github.com/amber-lang/amber-go/internal/diag"
	"github.com/amber-lang/amber-go/internal/lexer"
)

// Binding powers, loosest first. Ternary sits below all binary
// operators and is handled as a suffix of the finished binary parse.
//
const (
	precOr = iota + 1
	precAnd
	precEquality
	precRelational
	precRange
	precAdditive
	precMultiplicative
)

// binaryOps maps operator tokens to their binding power and AST spelling.
//
var binaryOps = map[token.Type]struct {
	Prec int
	Op   string
}{
	lexer.TokenOr:        {precOr, "or"},
	lexer.TokenAnd:       {precAnd, "and"},
	lexer.TokenEqEq:      {precEquality, "=="},
	lexer.TokenNotEq:     {precEquality, "!="},
	lexer.TokenLess:      {precRelational, "<"},
	lexer.TokenLessEq:    {precRelational, "<="},
	lexer.TokenGreater:   {precRelational, ">"},
	lexer.TokenGreaterEq: {precRelational, ">="},
	lexer.TokenRange:     {precRange, ".."},
	lexer.TokenRangeEq:   {precRange, "..="},
	lexer.TokenPlus:      {precAdditive, "+"},
	lexer.TokenMinus:     {precAdditive, "-"},
	lexer.TokenStar:      {precMultiplicative, "*"},
	lexer.TokenSlash:     {precMultiplicative, "/"},
	lexer.TokenPercent:   {precMultiplicative, "%"},
}

// parseExpression parses a full expression including the ternary form.
//
func (ctx *parseContext) parseExpression(p *parser.Parser) ast.Expr {
	return ctx.parseTernarySuffix(p, ctx.climb(p, ctx.parseUnary(p), 0))
}

// continueExpression resumes an expression whose leftmost operand was
// already consumed by the statement dispatcher.
//
func (ctx *parseContext) continueExpression(p *parser.Parser, left ast.Expr) ast.Expr {
	return ctx.parseTernarySuffix(p, ctx.climb(p, left, 0))
}

// parseTernarySuffix turns 'cond then a else b' into a Ternary node.
// The else branch re-enters parseExpression, making the form
// right-associative.
//
func (ctx *parseContext) parseTernarySuffix(p *parser.Parser, cond ast.Expr) ast.Expr {
	if !ctx.tryPeekType(p, lexer.TokenThen) {
		return cond
	}
	ctx.next(p)
	then := ctx.climb(p, ctx.parseUnary(p), 0)
	ctx.expect(p, lexer.TokenElse, "expecting 'else' to complete conditional expression")
	els := ctx.parseExpression(p)
	return &ast.Ternary{Loc: cond.Span().Merge(els.Span()), Cond: cond, Then: then, Else: els}
}

// climb is precedence climbing over binaryOps. Left-associativity comes
// from re-entering one level tighter on the right; the range operators
// instead refuse a Range as their left operand, making them
// non-associative.
//
func (ctx *parseContext) climb(p *parser.Parser, left ast.Expr, minPrec int) ast.Expr {
	for ctx.canPeek(p, 1) {
		op, ok := binaryOps[p.PeekType(1)]
		if !ok || op.Prec < minPrec {
			break
		}
		if op.Prec == precRange {
			if rng, chained := left.(*ast.Range); chained && !rng.Paren {
				panic(diag.New(diag.AmbiguousConstruct, spanOf(p.Peek(1)),
					"a range cannot be an operand of another range, use parentheses"))
			}
		}
		ctx.next(p)
		right := ctx.climb(p, ctx.parseUnary(p), op.Prec+1)
		loc := left.Span().Merge(right.Span())
		if op.Prec == precRange {
			left = &ast.Range{Loc: loc, Start: left, End: right, Inclusive: op.Op == "..="}
		} else {
			left = &ast.BinaryOp{Loc: loc, Op: op.Op, Left: left, Right: right}
		}
	}
	return left
}

// parseUnary parses the prefix operators, which bind tighter than any
// binary operator.
//
func (ctx *parseContext) parseUnary(p *parser.Parser) ast.Expr {
	switch ctx.peekType(p, 1) {
	case lexer.TokenMinus:
		t := ctx.next(p)
		x := ctx.parseUnary(p)
		return &ast.UnaryOp{Loc: spanOf(t).Merge(x.Span()), Op: "-", X: x}
	case lexer.TokenNot:
		t := ctx.next(p)
		x := ctx.parseUnary(p)
		return &ast.UnaryOp{Loc: spanOf(t).Merge(x.Span()), Op: "not", X: x}
	}
	return ctx.parsePrimary(p)
}

// parsePrimary parses atoms: literals, grouping, identifiers.
//
func (ctx *parseContext) parsePrimary(p *parser.Parser) ast.Expr {
	switch ctx.peekType(p, 1) {
	case lexer.TokenNumber:
		t := ctx.next(p)
		value, err := strconv.ParseFloat(t.Value(), 64)
		if err != nil {
			panic(diag.Newf(diag.UnexpectedToken, spanOf(t), "malformed number '%s'", t.Value()))
		}
		return &ast.Number{Loc: spanOf(t), Raw: t.Value(), Value: value}
	case lexer.TokenTrue:
		t := ctx.next(p)
		return &ast.Boolean{Loc: spanOf(t), Value: true}
	case lexer.TokenFalse:
		t := ctx.next(p)
		return &ast.Boolean{Loc: spanOf(t), Value: false}
	case lexer.TokenNull:
		t := ctx.next(p)
		return &ast.Null{Loc: spanOf(t)}
	case lexer.TokenTextStart:
		return ctx.parseText(p)
	case lexer.TokenCommandStart, lexer.TokenSilent, lexer.TokenUnsafe:
		return ctx.parseCommand(p)
	case lexer.TokenLBracket:
		return ctx.parseList(p)
	case lexer.TokenLParen:
		open := ctx.next(p)
		x := ctx.parseExpression(p)
		end := ctx.expect(p, lexer.TokenRParen, "expecting ')' to close expression")
		// Mark parenthesized ranges so non-associativity can tell
		// '(1..2)..3' apart from '1..2..3'.
		//
		if rng, ok := x.(*ast.Range); ok {
			return &ast.Range{Loc: spanOf(open).Merge(spanOf(end)), Start: rng.Start, End: rng.End, Inclusive: rng.Inclusive, Paren: true}
		}
		return x
	case lexer.TokenID:
		return ctx.parseIdentifierExpr(p, ctx.next(p))
	case lexer.TokenInternalID:
		t := p.Peek(1)
		panic(diag.Newf(diag.InvalidInternalIdentifierUse, spanOf(t),
			"'%s': identifiers prefixed with '__' are reserved", t.Value()))
	default:
		panic(ctx.unexpected(p, "expecting expression"))
	}
}

// parseIdentifierExpr parses what follows a consumed identifier:
// an argument list, an index, or nothing.
//
func (ctx *parseContext) parseIdentifierExpr(p *parser.Parser, name token.Token) ast.Expr {
	if ctx.tryPeekType(p, lexer.TokenLParen) {
		ctx.next(p)
		var args []ast.Expr
		if !ctx.tryPeekType(p, lexer.TokenRParen) {
			args = append(args, ctx.parseExpression(p))
			for ctx.tryPeekType(p, lexer.TokenComma) {
				ctx.next(p)
				args = append(args, ctx.parseExpression(p))
			}
		}
		end := ctx.expect(p, lexer.TokenRParen, "expecting ')' to close argument list")
		return &ast.FunctionCall{Loc: spanOf(name).Merge(spanOf(end)), Name: name.Value(), Args: args}
	}
	if ctx.tryPeekType(p, lexer.TokenLBracket) {
		ctx.next(p)
		idx := ctx.parseExpression(p)
		end := ctx.expect(p, lexer.TokenRBracket, "expecting ']' to close index")
		return &ast.VariableGet{Loc: spanOf(name).Merge(spanOf(end)), Name: name.Value(), Index: idx}
	}
	return &ast.VariableGet{Loc: spanOf(name), Name: name.Value()}
}

// typeNames maps type keyword tokens to element types for empty lists.
//
var typeNames = map[token.Type]ast.TypeName{
	lexer.TokenTypeText: ast.TypeText,
	lexer.TokenTypeNum:  ast.TypeNum,
	lexer.TokenTypeBool: ast.TypeBool,
	lexer.TokenTypeNull: ast.TypeNull,
}

// parseList resolves the empty/full list overlap one token past '[':
// a type keyword followed by ']' is the typed empty form, anything else
// is an element expression. A bare '[]' carries no element type and is
// rejected.
//
func (ctx *parseContext) parseList(p *parser.Parser) ast.Expr {
	open := ctx.expect(p, lexer.TokenLBracket, "expecting '['")
	if ctx.tryPeekType(p, lexer.TokenRBracket) {
		t := p.Peek(1)
		panic(diag.New(diag.AmbiguousConstruct, spanOf(open).Merge(spanOf(t)),
			"empty list requires an element type, e.g. [Num]"))
	}
	if elem, ok := typeNames[ctx.peekType(p, 1)]; ok && ctx.canPeek(p, 2) && p.PeekType(2) == lexer.TokenRBracket {
		ctx.next(p)
		end := ctx.next(p)
		return ast.NewEmptyList(spanOf(open).Merge(spanOf(end)), elem)
	}
	elems := []ast.Expr{ctx.parseExpression(p)}
	for ctx.tryPeekType(p, lexer.TokenComma) {
		ctx.next(p)
		elems = append(elems, ctx.parseExpression(p))
	}
	end := ctx.expect(p, lexer.TokenRBracket, "expecting ']' to close list")
	return ast.NewFullList(spanOf(open).Merge(spanOf(end)), elems)
}

// parseText parses a text literal into ordered parts.
//
func (ctx *parseContext) parseText(p *parser.Parser) ast.Expr {
	open := ctx.expect(p, lexer.TokenTextStart, "expecting text literal")
	parts, end := ctx.parseParts(p, lexer.TokenTextEnd, diag.UnterminatedText, open)
	return &ast.Text{Loc: spanOf(open).Merge(spanOf(end)), Parts: parts}
}

// parseCommand parses [ modifiers ] '$' parts '$' [ handler ].
// Modifiers are set-valued, so repeats collapse.
//
func (ctx *parseContext) parseCommand(p *parser.Parser) ast.Expr {
	var start token.Token
	node := &ast.Command{}
	for {
		if ctx.tryPeekType(p, lexer.TokenSilent) {
			t := ctx.next(p)
			if start == nil {
				start = t
			}
			node.Silent = true
			continue
		}
		if ctx.tryPeekType(p, lexer.TokenUnsafe) {
			t := ctx.next(p)
			if start == nil {
				start = t
			}
			node.Unsafe = true
			continue
		}
		break
	}
	open := ctx.expect(p, lexer.TokenCommandStart, "expecting '$' to open command")
	if start == nil {
		start = open
	}
	parts, end := ctx.parseParts(p, lexer.TokenCommandEnd, diag.UnterminatedCommand, open)
	node.Parts = parts
	node.Loc = spanOf(start).Merge(spanOf(end))
	// Failure handler, only when immediately present
	//
	if ctx.tryPeekType(p, lexer.TokenQMark) {
		t := ctx.next(p)
		node.Handler = &ast.FailureHandler{Loc: spanOf(t), Kind: ast.FailurePropagate}
		node.Loc = node.Loc.Merge(spanOf(t))
	} else if ctx.tryPeekType(p, lexer.TokenFailed) {
		kw := ctx.next(p)
		block := ctx.parseBlock(p)
		node.Handler = &ast.FailureHandler{Loc: spanOf(kw).Merge(block.Loc), Kind: ast.FailureBlock, Block: block}
		node.Loc = node.Loc.Merge(block.Loc)
	}
	return node
}

// parseParts consumes literal content up to the closing delimiter.
// Escape sequences decode here, so AST consumers see final characters.
// A stream that ends inside the literal is the unterminated case.
//
func (ctx *parseContext) parseParts(p *parser.Parser, endType token.Type, unterminated diag.Kind, open token.Token) ([]ast.Part, token.Token) {
	var parts []ast.Part
	for {
		if !ctx.canPeek(p, 1) {
			what := "text"
			if unterminated == diag.UnterminatedCommand {
				what = "command"
			}
			panic(diag.Newf(unterminated, spanOf(open), "unterminated %s literal", what))
		}
		switch p.PeekType(1) {
		case lexer.TokenRunes:
			t := ctx.next(p)
			parts = append(parts, &ast.PartRunes{Loc: spanOf(t), Value: t.Value()})
		case lexer.TokenEscapeSequence:
			t := ctx.next(p)
			parts = append(parts, &ast.PartRunes{Loc: spanOf(t), Value: decodeEscape(t.Value())})
		case lexer.TokenInterpStart:
			openInterp := ctx.next(p)
			x := ctx.parseExpression(p)
			end := ctx.expect(p, lexer.TokenInterpEnd, "expecting '}' to close interpolation")
			parts = append(parts, &ast.PartExpr{Loc: spanOf(openInterp).Merge(spanOf(end)), X: x})
		case endType:
			return parts, ctx.next(p)
		default:
			panic(ctx.unexpected(p, "expecting literal content"))
		}
	}
}
