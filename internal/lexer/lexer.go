package lexer

import (
	"bytes"
	"container/list"
	"fmt"
	"strings"

	"github.com/tekwizely/go-parsing/lexer"
	"github.com/tekwizely/go-parsing/lexer/token"

	"github.com/amber-lang/amber-go/internal/config"
	"github.com/amber-lang/amber-go/internal/diag"
)

// LexFn is a lexer fn that takes a context
//
type LexFn func(*LexContext, *lexer.Lexer) LexFn

// Error is a lexical error queued on the context. Each queued Error pairs,
// in order, with one emitted TokenError token; the parser joins the two to
// produce a positioned diagnostic.
//
type Error struct {
	Kind diag.Kind
	Msg  string
}

// LexContext allows us to track additional states of the lexer
//
type LexContext struct {
	Fn      LexFn
	fnStack *list.List
	Tokens  token.Nexter

	// interp holds one brace counter per open interpolation, innermost
	// last. The counter tracks '{' '}' pairs inside the interpolated
	// expression so only the balancing '}' closes the interpolation.
	//
	interp []int

	errs   *list.List
	srcLen int
}

// lex delegates incoming lexer calls to the configured fn
//
func (ctx *LexContext) lex(l *lexer.Lexer) lexer.Fn {
	fn := ctx.Fn
	// EOF ?
	//
	if fn == nil {
		if ctx.fnStack.Len() == 0 {
			return nil
		}
		fn = ctx.fnStack.Remove(ctx.fnStack.Back()).(LexFn)
		config.TraceFn("Popped lexer function", fn)
	}
	// assert(fn != nil)
	config.TraceFn("Calling lexer function", fn)
	ctx.Fn = fn(ctx, l)
	return ctx.lex
}

// PushFn stores the specified function on the fn stack.
//
func (ctx *LexContext) PushFn(fn LexFn) {
	ctx.fnStack.PushBack(fn)
	config.TraceFn("Pushed lexer function", fn)
}

// QueueError records a lexical error to be paired with the next TokenError.
//
func (ctx *LexContext) QueueError(kind diag.Kind, format string, args ...interface{}) {
	ctx.errs.PushBack(Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// TakeError pops the queued error paired with the oldest unclaimed TokenError.
//
func (ctx *LexContext) TakeError() Error {
	if ctx.errs.Len() == 0 {
		// Should not happen - every TokenError emit queues first
		//
		return Error{Kind: diag.InvalidCharacter, Msg: "invalid character"}
	}
	return ctx.errs.Remove(ctx.errs.Front()).(Error)
}

// SourceLen returns the byte length of the source buffer being lexed.
//
func (ctx *LexContext) SourceLen() int {
	return ctx.srcLen
}

// openInterp pushes a fresh brace counter, refusing past the depth limit.
//
func (ctx *LexContext) openInterp() bool {
	if len(ctx.interp) >= config.MaxNestingDepth {
		return false
	}
	ctx.interp = append(ctx.interp, 0)
	return true
}

// openBrace notes a '{' seen inside an interpolated expression.
//
func (ctx *LexContext) openBrace() {
	if n := len(ctx.interp); n > 0 {
		ctx.interp[n-1]++
	}
}

// closeBrace reports whether a '}' closes the current interpolation,
// popping it if so.
//
func (ctx *LexContext) closeBrace() bool {
	n := len(ctx.interp)
	if n == 0 {
		return false
	}
	if ctx.interp[n-1] > 0 {
		ctx.interp[n-1]--
		return false
	}
	ctx.interp = ctx.interp[:n-1]
	return true
}

// Lex initiates the lexer against a byte array
//
func Lex(fileBytes []byte) *LexContext {
	reader := newReaderIgnoreCR(bytes.NewReader(fileBytes))
	ctx := &LexContext{
		Fn:      LexMain,
		fnStack: list.New(),
		errs:    list.New(),
		srcLen:  len(fileBytes),
	}
	ctx.Tokens = lexer.LexRuneReader(reader, ctx.lex)
	return ctx
}

// LexMain is the primary lexer entry point, lexing everything outside of
// text and command literals. Inside an interpolation it is re-entered via
// the fn stack and hands control back on the balancing '}'.
//
func LexMain(ctx *LexContext, l *lexer.Lexer) LexFn {
	// EOF ?
	//
	if !l.CanPeek(1) {
		return nil
	}
	switch {
	// Whitespace is insignificant outside literals
	//
	case matchOneOrMore(l, isSpace):
		l.Clear()
	// '//' comment - consume to end of line
	//
	case l.CanPeek(2) && l.Peek(1) == runeSlash && l.Peek(2) == runeSlash:
		matchZeroOrMore(l, isNonNewline)
		l.Clear()
	// '..=' | '..' - Must check before '.'
	//
	case l.CanPeek(2) && l.Peek(1) == runeDot && l.Peek(2) == runeDot:
		l.Next() // .
		l.Next() // .
		if peekRuneEquals(l, runeEquals) {
			l.Next() // =
			l.EmitToken(TokenRangeEq)
		} else {
			l.EmitToken(TokenRange)
		}
	// '=='
	//
	case l.CanPeek(2) && l.Peek(1) == runeEquals && l.Peek(2) == runeEquals:
		l.Next()
		l.Next()
		l.EmitToken(TokenEqEq)
	// '!='
	//
	case l.CanPeek(2) && l.Peek(1) == runeBang && l.Peek(2) == runeEquals:
		l.Next()
		l.Next()
		l.EmitToken(TokenNotEq)
	// '<='
	//
	case l.CanPeek(2) && l.Peek(1) == runeLAngle && l.Peek(2) == runeEquals:
		l.Next()
		l.Next()
		l.EmitToken(TokenLessEq)
	// '>='
	//
	case l.CanPeek(2) && l.Peek(1) == runeRAngle && l.Peek(2) == runeEquals:
		l.Next()
		l.Next()
		l.EmitToken(TokenGreaterEq)
	// '{' - block brace, or a brace within an interpolated expression
	//
	case matchRune(l, runeLBrace):
		ctx.openBrace()
		l.EmitToken(TokenLBrace)
	// '}' - closes a block, or the enclosing interpolation
	//
	case matchRune(l, runeRBrace):
		if ctx.closeBrace() {
			l.EmitToken(TokenInterpEnd)
			return nil // Resume enclosing literal fn
		}
		l.EmitToken(TokenRBrace)
	// Single-Char Token - Check AFTER multi-char tokens
	//
	case strings.ContainsRune(singleRunes, l.Peek(1)):
		t, _ := singleToken(l.Peek(1))
		l.Next()
		l.EmitToken(t)
	// Number - DIGIT+ ( '.' DIGIT+ )?
	//
	case matchOneOrMore(l, isDigit):
		m := l.Marker()
		// A bare trailing '.' is not part of the number
		//
		if !(matchRune(l, runeDot) && matchOneOrMore(l, isDigit)) {
			m.Apply()
		}
		l.EmitToken(TokenNumber)
	// Keyword / ID / internal ID
	//
	case matchID(l):
		name := l.PeekToken()
		switch {
		case isKeyword(name):
			l.EmitToken(keywordTokens[name])
		case strings.HasPrefix(name, "__"):
			l.EmitToken(TokenInternalID)
		default:
			l.EmitToken(TokenID)
		}
	// Text literal - resume here once the literal closes
	//
	case matchRune(l, runeDQuote):
		l.EmitToken(TokenTextStart)
		ctx.PushFn(LexMain)
		return lexTextElement
	// Command literal - resume here once the literal closes
	//
	case matchRune(l, runeDollar):
		l.EmitToken(TokenCommandStart)
		ctx.PushFn(LexMain)
		return lexCommandElement
	// Unknown
	//
	default:
		r := l.Peek(1)
		l.Next()
		ctx.QueueError(diag.InvalidCharacter, "invalid character %q", r)
		l.EmitToken(TokenError)
	}

	return LexMain
}

// lexTextElement lexes the inside of a text literal, splicing in LexMain
// for each interpolation. An EOF here is an unterminated literal - the
// parser reports it, since it knows it is still inside the literal.
//
func lexTextElement(ctx *LexContext, l *lexer.Lexer) LexFn {
	switch {
	// Consume a run of non-quote, non-escape, non-interpolation characters
	//
	case matchOneOrMore(l, isTextRune):
		l.EmitToken(TokenRunes)
	// Back-slash '\'
	//
	case matchRune(l, runeBackSlash):
		if matchRune(l, runeBackSlash, runeDQuote, runeLBrace, runeDollar, 'n', 't', 'r') {
			l.EmitToken(TokenEscapeSequence)
		} else {
			if l.CanPeek(1) {
				l.Next()
			}
			ctx.QueueError(diag.InvalidEscape, "invalid escape sequence %q in text literal", l.PeekToken())
			l.EmitToken(TokenError)
		}
	// '{' opens an interpolation
	//
	case matchRune(l, runeLBrace):
		if !ctx.openInterp() {
			ctx.QueueError(diag.NestingTooDeep, "interpolations nested deeper than %d", config.MaxNestingDepth)
			l.EmitToken(TokenError)
			return lexTextElement
		}
		l.EmitToken(TokenInterpStart)
		ctx.PushFn(lexTextElement)
		return LexMain
	// Close quote
	//
	case matchRune(l, runeDQuote):
		l.EmitToken(TokenTextEnd)
		return nil
	// EOF - leave the unterminated literal to the parser
	//
	default:
		return nil
	}
	return lexTextElement
}

// lexCommandElement lexes the inside of a '$'-delimited command literal,
// with the same interpolation splicing as text literals.
//
func lexCommandElement(ctx *LexContext, l *lexer.Lexer) LexFn {
	switch {
	// Consume a run of non-dollar, non-escape, non-interpolation characters
	//
	case matchOneOrMore(l, isCommandRune):
		l.EmitToken(TokenRunes)
	// Back-slash '\'
	//
	case matchRune(l, runeBackSlash):
		if matchRune(l, runeBackSlash, runeDollar, runeLBrace, 'n', 't', 'r') {
			l.EmitToken(TokenEscapeSequence)
		} else {
			if l.CanPeek(1) {
				l.Next()
			}
			ctx.QueueError(diag.InvalidEscape, "invalid escape sequence %q in command literal", l.PeekToken())
			l.EmitToken(TokenError)
		}
	// '{' opens an interpolation
	//
	case matchRune(l, runeLBrace):
		if !ctx.openInterp() {
			ctx.QueueError(diag.NestingTooDeep, "interpolations nested deeper than %d", config.MaxNestingDepth)
			l.EmitToken(TokenError)
			return lexCommandElement
		}
		l.EmitToken(TokenInterpStart)
		ctx.PushFn(lexCommandElement)
		return LexMain
	// Close dollar
	//
	case matchRune(l, runeDollar):
		l.EmitToken(TokenCommandEnd)
		return nil
	// EOF - leave the unterminated literal to the parser
	//
	default:
		return nil
	}
	return lexCommandElement
}
