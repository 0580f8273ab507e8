package parser

import (
	"fmt"
	"io"

	"github.com/tekwizely/go-parsing/lexer/token"
	"github.com/tekwizely/go-parsing/parser"

	"github.com/amber-lang/amber-go/internal/ast"
	"github.com/amber-lang/amber-go/internal/config"
	"github.com/amber-lang/amber-go/internal/diag"
	"github.com/amber-lang/amber-go/internal/lexer"
)

// parseFn
//
type parseFn func(*parseContext, *parser.Parser) parseFn

// parseContext
//
type parseContext struct {
	l       *lexer.LexContext
	program *ast.Program
	diags   []*diag.Diagnostic
	fn      parseFn
	last    diag.Span // span of the last consumed token, for eof positions
}

// parse delegates incoming parser calls to the configured fn
//
func (ctx *parseContext) parse(p *parser.Parser) parser.Fn {
	fn := ctx.fn
	// EOF?
	//
	if fn == nil {
		return nil
	}
	config.TraceFn("Calling parser function", fn)
	ctx.fn = fn(ctx, p)
	return ctx.parse
}

// Parse consumes the token stream and returns the Program plus every
// diagnostic collected along the way. It never aborts the process: a
// malformed source yields a partial Program and one diagnostic per
// independent malformed region.
//
func Parse(l *lexer.LexContext) (*ast.Program, []*diag.Diagnostic) {
	ctx := &parseContext{
		l:       l,
		program: &ast.Program{},
		fn:      parseMain,
	}
	if config.MaxSourceBytes > 0 && l.SourceLen() > config.MaxSourceBytes {
		ctx.record(diag.Newf(diag.ResourceLimitExceeded, diag.Span{},
			"source is %d bytes, limit is %d", l.SourceLen(), config.MaxSourceBytes))
		return ctx.program, ctx.diags
	}
	_, err := parser.Parse(l.Tokens, ctx.parse).Next() // No emits
	if err != nil && err != io.EOF {
		ctx.record(diag.New(diag.UnexpectedToken, ctx.eofSpan(), err.Error()))
	}
	if n := len(ctx.program.Stmts); n > 0 {
		ctx.program.Loc = ctx.program.Stmts[0].Span().Merge(ctx.program.Stmts[n-1].Span())
	}
	return ctx.program, ctx.diags
}

// parseMain parses one global statement per invocation
//
func parseMain(ctx *parseContext, p *parser.Parser) parseFn {
	if !ctx.canPeek(p, 1) {
		return nil
	}
	if stmt := ctx.parseStatementRecover(p); stmt != nil {
		ctx.program.Stmts = append(ctx.program.Stmts, stmt)
	}
	p.Clear()
	return parseMain
}

// parseStatementRecover parses one statement under panic-mode recovery:
// a diagnostic panic is recorded, tokens are skipped to a sync point, and
// parsing resumes with the next statement.
//
func (ctx *parseContext) parseStatementRecover(p *parser.Parser) (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			d, ok := r.(*diag.Diagnostic)
			if !ok {
				panic(r)
			}
			ctx.record(d)
			ctx.synchronize(p)
			stmt = nil
		}
	}()
	return ctx.parseStatement(p)
}

// syncTokens are the tokens panic-mode recovery skips to.
//
var syncTokens = map[token.Type]bool{
	lexer.TokenLet:    true,
	lexer.TokenFun:    true,
	lexer.TokenMain:   true,
	lexer.TokenLoop:   true,
	lexer.TokenIf:     true,
	lexer.TokenImport: true,
	lexer.TokenPub:    true,
	lexer.TokenLBrace: true,
	lexer.TokenRBrace: true,
}

// synchronize consumes at least one token (when available), then skips
// forward to the next sync token so recovery always makes progress.
//
func (ctx *parseContext) synchronize(p *parser.Parser) {
	if ctx.canPeek(p, 1) {
		ctx.next(p)
	}
	for ctx.canPeek(p, 1) && !syncTokens[p.PeekType(1)] {
		ctx.next(p)
	}
}

// parseStatement dispatches on a single lookahead token.
//
func (ctx *parseContext) parseStatement(p *parser.Parser) ast.Stmt {
	switch ctx.peekType(p, 1) {
	case lexer.TokenImport:
		return ctx.parseImport(p, nil)
	case lexer.TokenPub:
		pub := ctx.next(p)
		switch ctx.peekType(p, 1) {
		case lexer.TokenImport:
			return ctx.parseImport(p, pub)
		case lexer.TokenFun:
			return ctx.parseFunctionDef(p, pub)
		default:
			panic(ctx.unexpected(p, "expecting 'fun' or 'import' after 'pub'"))
		}
	case lexer.TokenFun:
		return ctx.parseFunctionDef(p, nil)
	case lexer.TokenMain:
		return ctx.parseMainDef(p)
	case lexer.TokenLet:
		return ctx.parseVariableInit(p)
	case lexer.TokenIf:
		return ctx.parseIf(p)
	case lexer.TokenLoop:
		return ctx.parseLoop(p)
	case lexer.TokenInternalID:
		t := p.Peek(1)
		panic(diag.Newf(diag.InvalidInternalIdentifierUse, spanOf(t),
			"'%s': identifiers prefixed with '__' are reserved", t.Value()))
	case lexer.TokenID:
		return ctx.parseIdentifierStatement(p)
	default:
		x := ctx.parseExpression(p)
		return &ast.ExprStmt{Loc: x.Span(), X: x}
	}
}

// parseIdentifierStatement resolves the variable_set / variable_get /
// function_call overlap: '(' means call, '[' means an index whose fate is
// decided by a following '=', a direct '=' means a plain set.
//
func (ctx *parseContext) parseIdentifierStatement(p *parser.Parser) ast.Stmt {
	name := ctx.next(p)
	// 'name = expr'
	//
	if ctx.tryPeekType(p, lexer.TokenEquals) {
		ctx.next(p)
		value := ctx.parseExpression(p)
		return &ast.VariableSet{Loc: spanOf(name).Merge(value.Span()), Name: name.Value(), Value: value}
	}
	// 'name[idx] = expr' | indexed read in expression position
	//
	if ctx.tryPeekType(p, lexer.TokenLBracket) {
		ctx.next(p)
		idx := ctx.parseExpression(p)
		end := ctx.expect(p, lexer.TokenRBracket, "expecting ']' to close index")
		if ctx.tryPeekType(p, lexer.TokenEquals) {
			ctx.next(p)
			value := ctx.parseExpression(p)
			return &ast.VariableSet{Loc: spanOf(name).Merge(value.Span()), Name: name.Value(), Index: idx, Value: value}
		}
		get := &ast.VariableGet{Loc: spanOf(name).Merge(spanOf(end)), Name: name.Value(), Index: idx}
		x := ctx.continueExpression(p, get)
		return &ast.ExprStmt{Loc: x.Span(), X: x}
	}
	// call or plain read, possibly continuing as a larger expression
	//
	x := ctx.continueExpression(p, ctx.parseIdentifierExpr(p, name))
	return &ast.ExprStmt{Loc: x.Span(), X: x}
}

// parseImport parses [ 'pub' ] 'import' ( '*' | '{' names '}' ) 'from' path
//
func (ctx *parseContext) parseImport(p *parser.Parser, pub token.Token) ast.Stmt {
	start := ctx.expect(p, lexer.TokenImport, "expecting 'import'")
	if pub != nil {
		start = pub
	}
	node := &ast.Import{Pub: pub != nil}
	if ctx.tryPeekType(p, lexer.TokenStar) {
		ctx.next(p)
		node.Star = true
	} else {
		ctx.expect(p, lexer.TokenLBrace, "expecting '*' or '{' after 'import'")
		for {
			item := ast.ImportItem{Name: ctx.expectIdentifier(p, "imported name").Value()}
			if ctx.tryPeekType(p, lexer.TokenAs) {
				ctx.next(p)
				item.Alias = ctx.expectIdentifier(p, "import alias").Value()
			}
			node.Items = append(node.Items, item)
			if !ctx.tryPeekType(p, lexer.TokenComma) {
				break
			}
			ctx.next(p)
		}
		ctx.expect(p, lexer.TokenRBrace, "expecting '}' to close import list")
	}
	ctx.expect(p, lexer.TokenFrom, "expecting 'from'")
	path, pathSpan := ctx.parseImportPath(p)
	node.Path = path
	node.Loc = spanOf(start).Merge(pathSpan)
	return node
}

// parseImportPath expects a plain text literal - module paths must be
// known without evaluation, so interpolation is rejected.
//
func (ctx *parseContext) parseImportPath(p *parser.Parser) (string, diag.Span) {
	start := ctx.expect(p, lexer.TokenTextStart, "expecting import path string")
	var path string
	for {
		if !ctx.canPeek(p, 1) {
			panic(diag.New(diag.UnterminatedText, spanOf(start), "unterminated text literal"))
		}
		switch p.PeekType(1) {
		case lexer.TokenRunes:
			path += ctx.next(p).Value()
		case lexer.TokenEscapeSequence:
			path += decodeEscape(ctx.next(p).Value())
		case lexer.TokenInterpStart:
			panic(diag.New(diag.UnexpectedToken, spanOf(p.Peek(1)), "import path must be a plain string"))
		case lexer.TokenTextEnd:
			end := ctx.next(p)
			return path, spanOf(start).Merge(spanOf(end))
		default:
			panic(ctx.unexpected(p, "expecting import path"))
		}
	}
}

// parseFunctionDef parses [ 'pub' ] 'fun' name '(' params ')' block
//
func (ctx *parseContext) parseFunctionDef(p *parser.Parser, pub token.Token) ast.Stmt {
	start := ctx.expect(p, lexer.TokenFun, "expecting 'fun'")
	if pub != nil {
		start = pub
	}
	name := ctx.expectIdentifier(p, "function name")
	ctx.expect(p, lexer.TokenLParen, "expecting '(' after function name")
	var params []string
	if !ctx.tryPeekType(p, lexer.TokenRParen) {
		for {
			params = append(params, ctx.expectIdentifier(p, "parameter name").Value())
			if !ctx.tryPeekType(p, lexer.TokenComma) {
				break
			}
			ctx.next(p)
		}
	}
	ctx.expect(p, lexer.TokenRParen, "expecting ')' to close parameter list")
	body := ctx.parseBlock(p)
	return &ast.FunctionDef{
		Loc:    spanOf(start).Merge(body.Loc),
		Pub:    pub != nil,
		Name:   name.Value(),
		Params: params,
		Body:   body,
	}
}

// parseMainDef parses 'main' [ '(' id ')' ] block.
// The parameter group is optional - only a '(' opens one, a block is
// never mistaken for it.
//
func (ctx *parseContext) parseMainDef(p *parser.Parser) ast.Stmt {
	start := ctx.expect(p, lexer.TokenMain, "expecting 'main'")
	arg := ""
	if ctx.tryPeekType(p, lexer.TokenLParen) {
		ctx.next(p)
		arg = ctx.expectIdentifier(p, "main parameter").Value()
		ctx.expect(p, lexer.TokenRParen, "expecting ')' after main parameter")
	}
	body := ctx.parseBlock(p)
	return &ast.Main{Loc: spanOf(start).Merge(body.Loc), Arg: arg, Body: body}
}

// parseVariableInit parses 'let' name '=' expr
//
func (ctx *parseContext) parseVariableInit(p *parser.Parser) ast.Stmt {
	start := ctx.expect(p, lexer.TokenLet, "expecting 'let'")
	name := ctx.expectIdentifier(p, "variable name")
	ctx.expect(p, lexer.TokenEquals, "expecting '=' after variable name")
	value := ctx.parseExpression(p)
	return &ast.VariableInit{Loc: spanOf(start).Merge(value.Span()), Name: name.Value(), Value: value}
}

// parseIf parses both conditional forms. The token after 'if' is the sole
// discriminator: '{' begins a chain, anything else a single if_statement.
//
func (ctx *parseContext) parseIf(p *parser.Parser) ast.Stmt {
	start := ctx.expect(p, lexer.TokenIf, "expecting 'if'")
	if ctx.tryPeekType(p, lexer.TokenLBrace) {
		return ctx.parseIfChain(p, start)
	}
	cond := ctx.parseExpression(p)
	then := ctx.parseBlock(p)
	node := &ast.If{Cond: cond, Then: then}
	node.Loc = spanOf(start).Merge(then.Loc)
	if ctx.tryPeekType(p, lexer.TokenElse) {
		ctx.next(p)
		node.Else = ctx.parseBlock(p)
		node.Loc = spanOf(start).Merge(node.Else.Loc)
	}
	return node
}

// parseIfChain parses '{' ( cond block )+ [ 'else' block ] '}'
//
func (ctx *parseContext) parseIfChain(p *parser.Parser, start token.Token) ast.Stmt {
	ctx.expect(p, lexer.TokenLBrace, "expecting '{' to open if chain")
	node := &ast.IfChain{}
	for {
		if ctx.tryPeekType(p, lexer.TokenRBrace) {
			break
		}
		if ctx.tryPeekType(p, lexer.TokenElse) {
			ctx.next(p)
			node.Else = ctx.parseBlock(p)
			break
		}
		cond := ctx.parseExpression(p)
		body := ctx.parseBlock(p)
		node.Pairs = append(node.Pairs, ast.IfPair{Cond: cond, Body: body})
	}
	end := ctx.expect(p, lexer.TokenRBrace, "expecting '}' to close if chain")
	if len(node.Pairs) == 0 {
		panic(diag.New(diag.UnexpectedToken, spanOf(start), "if chain requires at least one condition"))
	}
	node.Loc = spanOf(start).Merge(spanOf(end))
	// A trailing else may also sit outside the braces
	//
	if node.Else == nil && ctx.tryPeekType(p, lexer.TokenElse) {
		ctx.next(p)
		node.Else = ctx.parseBlock(p)
		node.Loc = spanOf(start).Merge(node.Else.Loc)
	}
	return node
}

// parseLoop parses 'loop' block | 'loop' id 'in' expr block
//
func (ctx *parseContext) parseLoop(p *parser.Parser) ast.Stmt {
	start := ctx.expect(p, lexer.TokenLoop, "expecting 'loop'")
	if ctx.tryPeekType(p, lexer.TokenLBrace) || ctx.tryPeekType(p, lexer.TokenColon) {
		body := ctx.parseBlock(p)
		return &ast.Loop{Loc: spanOf(start).Merge(body.Loc), Body: body}
	}
	iter := ctx.expectIdentifier(p, "loop iterator")
	ctx.expect(p, lexer.TokenIn, "expecting 'in' after loop iterator")
	iterable := ctx.parseExpression(p)
	body := ctx.parseBlock(p)
	return &ast.LoopArray{
		Loc:  spanOf(start).Merge(body.Loc),
		Var:  iter.Value(),
		Iter: iterable,
		Body: body,
	}
}

// parseBlock parses '{' stmt* '}' or the single-line ':' stmt form.
// Statements inside a braced block recover independently, so one bad
// statement does not take the rest of the block with it.
//
func (ctx *parseContext) parseBlock(p *parser.Parser) *ast.Block {
	if ctx.tryPeekType(p, lexer.TokenColon) {
		colon := ctx.next(p)
		stmt := ctx.parseStatement(p)
		return &ast.Block{Loc: spanOf(colon).Merge(stmt.Span()), Stmts: []ast.Stmt{stmt}}
	}
	open := ctx.expect(p, lexer.TokenLBrace, "expecting '{' or ':' to open block")
	block := &ast.Block{}
	for !ctx.tryPeekType(p, lexer.TokenRBrace) {
		if !ctx.canPeek(p, 1) {
			panic(diag.New(diag.UnexpectedEndOfInput, ctx.eofSpan(), "expecting '}' to close block, found end of input"))
		}
		if stmt := ctx.parseStatementRecover(p); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	end := ctx.next(p)
	block.Loc = spanOf(open).Merge(spanOf(end))
	return block
}

// record appends a diagnostic.
//
func (ctx *parseContext) record(d *diag.Diagnostic) {
	ctx.diags = append(ctx.diags, d)
}

// drainErrors converts any pending TokenError tokens into diagnostics,
// pairing each with the lexical error queued on the LexContext.
//
func (ctx *parseContext) drainErrors(p *parser.Parser) {
	for p.CanPeek(1) && p.PeekType(1) == lexer.TokenError {
		t := p.Next()
		ctx.last = spanOf(t)
		e := ctx.l.TakeError()
		ctx.record(diag.New(e.Kind, spanOf(t), e.Msg))
	}
}

// canPeek
//
func (ctx *parseContext) canPeek(p *parser.Parser, n int) bool {
	ctx.drainErrors(p)
	return p.CanPeek(n)
}

// tryPeekType
//
func (ctx *parseContext) tryPeekType(p *parser.Parser, typ token.Type) bool {
	return ctx.canPeek(p, 1) && p.PeekType(1) == typ
}

// peekType returns the type of the next token, or panics with
// UnexpectedEndOfInput if the stream is exhausted.
//
func (ctx *parseContext) peekType(p *parser.Parser, n int) token.Type {
	if !ctx.canPeek(p, n) {
		panic(diag.New(diag.UnexpectedEndOfInput, ctx.eofSpan(), "unexpected end of input"))
	}
	return p.PeekType(n)
}

// next consumes and returns the next token, tracking its span for
// end-of-input positions.
//
func (ctx *parseContext) next(p *parser.Parser) token.Token {
	t := p.Next()
	ctx.last = spanOf(t)
	return t
}

// expect consumes a token of the specified type or panics with a
// diagnostic describing what was expected vs found.
//
func (ctx *parseContext) expect(p *parser.Parser, typ token.Type, msg string) token.Token {
	if !ctx.canPeek(p, 1) {
		panic(diag.Newf(diag.UnexpectedEndOfInput, ctx.eofSpan(), "%s, found end of input", msg))
	}
	if p.PeekType(1) != typ {
		panic(ctx.unexpected(p, msg))
	}
	return ctx.next(p)
}

// expectIdentifier consumes an identifier, rejecting the reserved
// '__'-prefixed class wherever a plain identifier is required.
//
func (ctx *parseContext) expectIdentifier(p *parser.Parser, what string) token.Token {
	if !ctx.canPeek(p, 1) {
		panic(diag.Newf(diag.UnexpectedEndOfInput, ctx.eofSpan(), "expecting %s, found end of input", what))
	}
	if p.PeekType(1) == lexer.TokenInternalID {
		t := p.Peek(1)
		panic(diag.Newf(diag.InvalidInternalIdentifierUse, spanOf(t),
			"'%s': identifiers prefixed with '__' are reserved", t.Value()))
	}
	if p.PeekType(1) != lexer.TokenID {
		panic(ctx.unexpected(p, fmt.Sprintf("expecting %s", what)))
	}
	return ctx.next(p)
}

// unexpected builds an UnexpectedToken diagnostic for the next token.
// Callers must ensure a token is available.
//
func (ctx *parseContext) unexpected(p *parser.Parser, msg string) *diag.Diagnostic {
	t := p.Peek(1)
	return diag.Newf(diag.UnexpectedToken, spanOf(t), "%s, found '%s'", msg, t.Value())
}

// eofSpan positions a diagnostic just past the last consumed token.
//
func (ctx *parseContext) eofSpan() diag.Span {
	if ctx.last.End.Line == 0 {
		return diag.Span{Start: diag.Pos{Line: 1, Column: 1}, End: diag.Pos{Line: 1, Column: 1}}
	}
	return diag.Span{Start: ctx.last.End, End: ctx.last.End}
}

// spanOf derives a node span from a token, newline-aware for text chunks.
//
func spanOf(t token.Token) diag.Span {
	start := diag.Pos{Line: t.Line(), Column: t.Column()}
	end := start
	for _, r := range t.Value() {
		if r == '\n' {
			end.Line++
			end.Column = 1
		} else {
			end.Column++
		}
	}
	if end == start {
		end.Column++
	}
	return diag.Span{Start: start, End: end}
}

// decodeEscape resolves a two-rune escape sequence to its character.
//
func decodeEscape(seq string) string {
	runes := []rune(seq)
	if len(runes) < 2 {
		return seq
	}
	switch runes[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	default:
		return string(runes[1])
	}
}
