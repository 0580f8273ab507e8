package lexer

import (
	"strings"
	"unicode"

	"github.com/tekwizely/go-parsing/lexer"
	"github.com/tekwizely/go-parsing/lexer/token"
)

// Runes
//
const (
	runeBang      = '!'
	runeDollar    = '$'
	runeDot       = '.'
	runeComma     = ','
	runeEquals    = '='
	runeQMark     = '?'
	runeColon     = ':'
	runeBackSlash = '\\'
	runeDQuote    = '"'
	runePlus      = '+'
	runeDash      = '-'
	runeStar      = '*'
	runeSlash     = '/'
	runePercent   = '%'
	runeLAngle    = '<'
	runeRAngle    = '>'
	runeLParen    = '('
	runeRParen    = ')'
	runeLBrace    = '{'
	runeRBrace    = '}'
	runeLBracket  = '['
	runeRBracket  = ']'
)

// Single-Rune tokens - '{' and '}' are NOT here, they need
// interpolation bookkeeping and are matched explicitly.
//
var (
	singleRunes  = "+-*/%=<>()[],:?"
	singleTokens = []token.Type{
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenEquals, TokenLess, TokenGreater, TokenLParen, TokenRParen,
		TokenLBracket, TokenRBracket, TokenComma, TokenColon, TokenQMark,
	}
)

// singleToken returns the token type for a single-rune token, if any.
//
func singleToken(r rune) (token.Type, bool) {
	if i := strings.IndexRune(singleRunes, r); i >= 0 {
		return singleTokens[i], true
	}
	return 0, false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaUnder(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isAlphaNumUnder(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

// isSpace matches any insignificant whitespace, newlines included.
//
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isNonNewline(r rune) bool {
	return r != '\n'
}

// isTextRune matches runes that pass through a text literal untouched.
// '"' ends the literal, '\' escapes, '{' opens an interpolation.
// A bare '}' inside text is just a character.
//
func isTextRune(r rune) bool {
	return r != runeDQuote && r != runeBackSlash && r != runeLBrace
}

// isCommandRune matches runes that pass through a command literal untouched.
//
func isCommandRune(r rune) bool {
	return r != runeDollar && r != runeBackSlash && r != runeLBrace
}

func peekRuneEquals(l *lexer.Lexer, r rune) bool {
	return l.CanPeek(1) && l.Peek(1) == r
}
