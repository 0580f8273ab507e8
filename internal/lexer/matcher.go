package lexer

import "github.com/tekwizely/go-parsing/lexer"

type runeFn func(rune) bool

// matchRune attempts to match the next rune to one specified, returning success or failure.
//
func matchRune(l *lexer.Lexer, runes ...rune) bool {
	if l.CanPeek(1) {
		p := l.Peek(1)
		for _, r := range runes {
			if r == p {
				l.Next()
				return true
			}
		}
	}
	return false
}

// matchZeroOrMore attempts to match zero or more of the specified predicate, returning success regardless.
//
func matchZeroOrMore(l *lexer.Lexer, fn runeFn) bool {
	for l.CanPeek(1) && fn(l.Peek(1)) {
		l.Next()
	}
	return true
}

// matchOne attempts to match one of the specified predicate, returning success or failure.
//
func matchOne(l *lexer.Lexer, fn runeFn) bool {
	if l.CanPeek(1) && fn(l.Peek(1)) {
		l.Next()
		return true
	}
	return false
}

// matchOneOrMore attempts to match one or more of the specified predicate, returning success or failure.
//
func matchOneOrMore(l *lexer.Lexer, fn runeFn) bool {
	b := false
	for l.CanPeek(1) && fn(l.Peek(1)) {
		l.Next()
		b = true
	}
	return b
}

// matchID matches [a-zA-Z_][a-zA-Z0-9_]*
//
func matchID(l *lexer.Lexer) bool {
	return matchOne(l, isAlphaUnder) && matchZeroOrMore(l, isAlphaNumUnder)
}
