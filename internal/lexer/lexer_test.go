package lexer

import (
	"io"
	"testing"

	"github.com/tekwizely/go-parsing/lexer/token"

	"github.com/amber-lang/amber-go/internal/config"
	"github.com/amber-lang/amber-go/internal/diag"
)

type lexed struct {
	typ   token.Type
	value string
}

// lexAll drains the token stream, returning the context for error
// inspection alongside the tokens.
//
func lexAll(t *testing.T, src string) (*LexContext, []lexed) {
	t.Helper()
	ctx := Lex([]byte(src))
	var tokens []lexed
	for {
		tok, err := ctx.Tokens.Next()
		if err == io.EOF {
			return ctx, tokens
		}
		if err != nil {
			t.Fatalf("unexpected lexer error: %v", err)
		}
		tokens = append(tokens, lexed{tok.Type(), tok.Value()})
	}
}

func expectTokens(t *testing.T, got []lexed, want ...lexed) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestOperatorsLexGreedily(t *testing.T) {
	_, tokens := lexAll(t, "a <= b == c ..= d .. e")
	expectTokens(t, tokens,
		lexed{TokenID, "a"},
		lexed{TokenLessEq, "<="},
		lexed{TokenID, "b"},
		lexed{TokenEqEq, "=="},
		lexed{TokenID, "c"},
		lexed{TokenRangeEq, "..="},
		lexed{TokenID, "d"},
		lexed{TokenRange, ".."},
		lexed{TokenID, "e"},
	)
}

func TestNumberDoesNotConsumeRangeDot(t *testing.T) {
	_, tokens := lexAll(t, "1..2")
	expectTokens(t, tokens,
		lexed{TokenNumber, "1"},
		lexed{TokenRange, ".."},
		lexed{TokenNumber, "2"},
	)
}

func TestNumberWithFraction(t *testing.T) {
	_, tokens := lexAll(t, "3.14")
	expectTokens(t, tokens, lexed{TokenNumber, "3.14"})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	_, tokens := lexAll(t, "let letter __cache Text true")
	expectTokens(t, tokens,
		lexed{TokenLet, "let"},
		lexed{TokenID, "letter"},
		lexed{TokenInternalID, "__cache"},
		lexed{TokenTypeText, "Text"},
		lexed{TokenTrue, "true"},
	)
}

func TestCommentsAndWhitespaceDiscarded(t *testing.T) {
	_, tokens := lexAll(t, "// heading\nlet x // trailing\n= 1")
	expectTokens(t, tokens,
		lexed{TokenLet, "let"},
		lexed{TokenID, "x"},
		lexed{TokenEquals, "="},
		lexed{TokenNumber, "1"},
	)
}

func TestInvalidCharacter(t *testing.T) {
	ctx, tokens := lexAll(t, "let @ x")
	expectTokens(t, tokens,
		lexed{TokenLet, "let"},
		lexed{TokenError, "@"},
		lexed{TokenID, "x"},
	)
	if e := ctx.TakeError(); e.Kind != diag.InvalidCharacter {
		t.Fatalf("expected InvalidCharacter, got %s", e.Kind)
	}
}

func TestTextLiteralWithInterpolation(t *testing.T) {
	_, tokens := lexAll(t, `"a{b}c"`)
	expectTokens(t, tokens,
		lexed{TokenTextStart, `"`},
		lexed{TokenRunes, "a"},
		lexed{TokenInterpStart, "{"},
		lexed{TokenID, "b"},
		lexed{TokenInterpEnd, "}"},
		lexed{TokenRunes, "c"},
		lexed{TokenTextEnd, `"`},
	)
}

func TestCommandLiteralWithEscape(t *testing.T) {
	_, tokens := lexAll(t, `$echo \$HOME$`)
	expectTokens(t, tokens,
		lexed{TokenCommandStart, "$"},
		lexed{TokenRunes, "echo "},
		lexed{TokenEscapeSequence, `\$`},
		lexed{TokenRunes, "HOME"},
		lexed{TokenCommandEnd, "$"},
	)
}

func TestInvalidEscapeInText(t *testing.T) {
	ctx, tokens := lexAll(t, `"a\qb"`)
	expectTokens(t, tokens,
		lexed{TokenTextStart, `"`},
		lexed{TokenRunes, "a"},
		lexed{TokenError, `\q`},
		lexed{TokenRunes, "b"},
		lexed{TokenTextEnd, `"`},
	)
	if e := ctx.TakeError(); e.Kind != diag.InvalidEscape {
		t.Fatalf("expected InvalidEscape, got %s", e.Kind)
	}
}

func TestNestedLiterals(t *testing.T) {
	_, tokens := lexAll(t, `"a{ $b{c}d$ }e"`)
	expectTokens(t, tokens,
		lexed{TokenTextStart, `"`},
		lexed{TokenRunes, "a"},
		lexed{TokenInterpStart, "{"},
		lexed{TokenCommandStart, "$"},
		lexed{TokenRunes, "b"},
		lexed{TokenInterpStart, "{"},
		lexed{TokenID, "c"},
		lexed{TokenInterpEnd, "}"},
		lexed{TokenRunes, "d"},
		lexed{TokenCommandEnd, "$"},
		lexed{TokenInterpEnd, "}"},
		lexed{TokenRunes, "e"},
		lexed{TokenTextEnd, `"`},
	)
}

func TestNestingDepthLimit(t *testing.T) {
	savedDepth := config.MaxNestingDepth
	config.MaxNestingDepth = 1
	defer func() { config.MaxNestingDepth = savedDepth }()

	ctx, tokens := lexAll(t, `"a{ "b{c}d" }e"`)
	errCnt := 0
	for _, tok := range tokens {
		if tok.typ == TokenError {
			errCnt++
		}
	}
	if errCnt != 1 {
		t.Fatalf("expected 1 error token, got %d", errCnt)
	}
	if e := ctx.TakeError(); e.Kind != diag.NestingTooDeep {
		t.Fatalf("expected NestingTooDeep, got %s", e.Kind)
	}
}

func TestLexingResumesAfterLiteral(t *testing.T) {
	_, tokens := lexAll(t, `let a = "x"
let b = $y$ + 2`)
	expectTokens(t, tokens,
		lexed{TokenLet, "let"},
		lexed{TokenID, "a"},
		lexed{TokenEquals, "="},
		lexed{TokenTextStart, `"`},
		lexed{TokenRunes, "x"},
		lexed{TokenTextEnd, `"`},
		lexed{TokenLet, "let"},
		lexed{TokenID, "b"},
		lexed{TokenEquals, "="},
		lexed{TokenCommandStart, "$"},
		lexed{TokenRunes, "y"},
		lexed{TokenCommandEnd, "$"},
		lexed{TokenPlus, "+"},
		lexed{TokenNumber, "2"},
	)
}

func TestUnterminatedTextStopsCleanly(t *testing.T) {
	_, tokens := lexAll(t, `"abc`)
	expectTokens(t, tokens,
		lexed{TokenTextStart, `"`},
		lexed{TokenRunes, "abc"},
	)
}
