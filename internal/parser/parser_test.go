package parser

import (
	"testing"

	"github.com/amber-lang/amber-go/internal/ast"
	"github.com/amber-lang/amber-go/internal/config"
	"github.com/amber-lang/amber-go/internal/diag"
	"github.com/amber-lang/amber-go/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, []*diag.Diagnostic) {
	t.Helper()
	return Parse(lexer.Lex([]byte(src)))
}

// parseOK fails the test on any diagnostic.
//
func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, diags := parseSrc(t, src)
	for _, d := range diags {
		t.Errorf("unexpected diagnostic: %s: %s", d.Kind, d)
	}
	if t.Failed() {
		t.FailNow()
	}
	return program
}

// parseFail expects at least one diagnostic of the specified kind.
//
func parseFail(t *testing.T, src string, kind diag.Kind) []*diag.Diagnostic {
	t.Helper()
	_, diags := parseSrc(t, src)
	for _, d := range diags {
		if d.Kind == kind {
			return diags
		}
	}
	t.Fatalf("expected a %s diagnostic, got %v", kind, diags)
	return nil
}

// initValue extracts the value of a program's sole 'let' statement.
//
func initValue(t *testing.T, program *ast.Program) ast.Expr {
	t.Helper()
	if len(program.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Stmts))
	}
	stmt, ok := program.Stmts[0].(*ast.VariableInit)
	if !ok {
		t.Fatalf("expected *ast.VariableInit, got %T", program.Stmts[0])
	}
	return stmt.Value
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	value := initValue(t, parseOK(t, "let x = 1 + 2 * 3"))
	add, ok := value.(*ast.BinaryOp)
	if !ok || add.Op != "+" {
		t.Fatalf("expected '+' at root, got %#v", value)
	}
	mul, ok := add.Right.(*ast.BinaryOp)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected '*' as right operand, got %#v", add.Right)
	}
}

func TestAndBindsTighterThanOr(t *testing.T) {
	value := initValue(t, parseOK(t, "let x = a and b or c"))
	or, ok := value.(*ast.BinaryOp)
	if !ok || or.Op != "or" {
		t.Fatalf("expected 'or' at root, got %#v", value)
	}
	if and, ok := or.Left.(*ast.BinaryOp); !ok || and.Op != "and" {
		t.Fatalf("expected 'and' as left operand, got %#v", or.Left)
	}
}

func TestRangeEndSpansAdditive(t *testing.T) {
	value := initValue(t, parseOK(t, "let r = 1 .. 2 + 1"))
	rng, ok := value.(*ast.Range)
	if !ok {
		t.Fatalf("expected *ast.Range, got %T", value)
	}
	if add, ok := rng.End.(*ast.BinaryOp); !ok || add.Op != "+" {
		t.Fatalf("expected '+' as range end, got %#v", rng.End)
	}
	if rng.Inclusive {
		t.Fatal("expected exclusive range")
	}
}

func TestChainedRangeRejected(t *testing.T) {
	parseFail(t, "let r = 1..2..3", diag.AmbiguousConstruct)
}

func TestParenthesizedRangeChains(t *testing.T) {
	value := initValue(t, parseOK(t, "let r = (1..2)..3"))
	rng, ok := value.(*ast.Range)
	if !ok {
		t.Fatalf("expected *ast.Range, got %T", value)
	}
	if _, ok := rng.Start.(*ast.Range); !ok {
		t.Fatalf("expected nested range as start, got %T", rng.Start)
	}
}

func TestTernaryBelowOr(t *testing.T) {
	value := initValue(t, parseOK(t, "let x = a or b then c else d"))
	ternary, ok := value.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected *ast.Ternary, got %T", value)
	}
	if or, ok := ternary.Cond.(*ast.BinaryOp); !ok || or.Op != "or" {
		t.Fatalf("expected 'or' as condition, got %#v", ternary.Cond)
	}
}

func TestTernaryRightAssociative(t *testing.T) {
	value := initValue(t, parseOK(t, "let x = a then b else c then d else e"))
	outer, ok := value.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected *ast.Ternary, got %T", value)
	}
	if _, ok := outer.Else.(*ast.Ternary); !ok {
		t.Fatalf("expected nested ternary in else branch, got %T", outer.Else)
	}
}

func TestUnaryMinusAndNot(t *testing.T) {
	value := initValue(t, parseOK(t, "let x = not -a"))
	not, ok := value.(*ast.UnaryOp)
	if !ok || not.Op != "not" {
		t.Fatalf("expected 'not' at root, got %#v", value)
	}
	if neg, ok := not.X.(*ast.UnaryOp); !ok || neg.Op != "-" {
		t.Fatalf("expected '-' inside 'not', got %#v", not.X)
	}
}

func TestIfFormsAreDistinct(t *testing.T) {
	program := parseOK(t, "if a == 1 { b() } else { c() }")
	node, ok := program.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", program.Stmts[0])
	}
	if node.Else == nil {
		t.Fatal("expected else block")
	}

	program = parseOK(t, "if { a == 1 { b() } a == 2 { c() } else { d() } }")
	chain, ok := program.Stmts[0].(*ast.IfChain)
	if !ok {
		t.Fatalf("expected *ast.IfChain, got %T", program.Stmts[0])
	}
	if len(chain.Pairs) != 2 {
		t.Fatalf("expected 2 chain pairs, got %d", len(chain.Pairs))
	}
	if chain.Else == nil {
		t.Fatal("expected else block")
	}
}

func TestIfChainTrailingElseOutsideBraces(t *testing.T) {
	program := parseOK(t, "if { a: b() } else: c()")
	chain, ok := program.Stmts[0].(*ast.IfChain)
	if !ok {
		t.Fatalf("expected *ast.IfChain, got %T", program.Stmts[0])
	}
	if len(chain.Pairs) != 1 || chain.Else == nil {
		t.Fatalf("expected 1 pair plus else, got %#v", chain)
	}
}

func TestIfChainRequiresCondition(t *testing.T) {
	parseFail(t, "if { else { a() } }", diag.UnexpectedToken)
}

func TestSingleStatementBlock(t *testing.T) {
	program := parseOK(t, "if a: b()")
	node, ok := program.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", program.Stmts[0])
	}
	if len(node.Then.Stmts) != 1 {
		t.Fatalf("expected 1 statement in block, got %d", len(node.Then.Stmts))
	}
}

func TestLoopForms(t *testing.T) {
	program := parseOK(t, "loop { work() }")
	if _, ok := program.Stmts[0].(*ast.Loop); !ok {
		t.Fatalf("expected *ast.Loop, got %T", program.Stmts[0])
	}

	program = parseOK(t, "loop i in 1..3 { use(i) }")
	node, ok := program.Stmts[0].(*ast.LoopArray)
	if !ok {
		t.Fatalf("expected *ast.LoopArray, got %T", program.Stmts[0])
	}
	if node.Var != "i" {
		t.Fatalf("expected iterator 'i', got %q", node.Var)
	}
	if _, ok := node.Iter.(*ast.Range); !ok {
		t.Fatalf("expected range iterable, got %T", node.Iter)
	}
}

func TestInternalIdentifierRejected(t *testing.T) {
	diags := parseFail(t, "__hidden = 1", diag.InvalidInternalIdentifierUse)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(diags))
	}
}

func TestPlainAssignmentAccepted(t *testing.T) {
	program := parseOK(t, "hidden = 1")
	node, ok := program.Stmts[0].(*ast.VariableSet)
	if !ok {
		t.Fatalf("expected *ast.VariableSet, got %T", program.Stmts[0])
	}
	if node.Name != "hidden" || node.Index != nil {
		t.Fatalf("unexpected assignment: %#v", node)
	}
}

func TestIndexedAssignmentVsIndexedRead(t *testing.T) {
	program := parseOK(t, "a[0] = 1")
	set, ok := program.Stmts[0].(*ast.VariableSet)
	if !ok {
		t.Fatalf("expected *ast.VariableSet, got %T", program.Stmts[0])
	}
	if set.Index == nil {
		t.Fatal("expected index on assignment")
	}

	program = parseOK(t, "a[0] + 1")
	stmt, ok := program.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", program.Stmts[0])
	}
	add, ok := stmt.X.(*ast.BinaryOp)
	if !ok || add.Op != "+" {
		t.Fatalf("expected '+' expression, got %#v", stmt.X)
	}
	if _, ok := add.Left.(*ast.VariableGet); !ok {
		t.Fatalf("expected indexed read as left operand, got %T", add.Left)
	}
}

func TestCallStatement(t *testing.T) {
	program := parseOK(t, "greet(name, 1)")
	stmt, ok := program.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", program.Stmts[0])
	}
	call, ok := stmt.X.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected *ast.FunctionCall, got %T", stmt.X)
	}
	if call.Name != "greet" || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %#v", call)
	}
}

func TestCommandWithInterpolationAndPropagate(t *testing.T) {
	value := initValue(t, parseOK(t, "let out = $echo {name}$?"))
	cmd, ok := value.(*ast.Command)
	if !ok {
		t.Fatalf("expected *ast.Command, got %T", value)
	}
	if len(cmd.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(cmd.Parts))
	}
	if runes, ok := cmd.Parts[0].(*ast.PartRunes); !ok || runes.Value != "echo " {
		t.Fatalf("unexpected first part: %#v", cmd.Parts[0])
	}
	if _, ok := cmd.Parts[1].(*ast.PartExpr); !ok {
		t.Fatalf("expected interpolation part, got %T", cmd.Parts[1])
	}
	if cmd.Handler == nil || cmd.Handler.Kind != ast.FailurePropagate {
		t.Fatalf("expected propagate handler, got %#v", cmd.Handler)
	}
}

func TestCommandWithFailedBlock(t *testing.T) {
	value := initValue(t, parseOK(t, "let out = $ls$ failed { log() }"))
	cmd, ok := value.(*ast.Command)
	if !ok {
		t.Fatalf("expected *ast.Command, got %T", value)
	}
	if cmd.Handler == nil || cmd.Handler.Kind != ast.FailureBlock || cmd.Handler.Block == nil {
		t.Fatalf("expected failed-block handler, got %#v", cmd.Handler)
	}
}

func TestCommandModifiers(t *testing.T) {
	value := initValue(t, parseOK(t, "let out = silent unsafe $ls$"))
	cmd, ok := value.(*ast.Command)
	if !ok {
		t.Fatalf("expected *ast.Command, got %T", value)
	}
	if !cmd.Silent || !cmd.Unsafe {
		t.Fatalf("expected both modifiers set, got %#v", cmd)
	}
}

func TestTextEscapesDecode(t *testing.T) {
	value := initValue(t, parseOK(t, `let s = "a\nb\{c"`))
	text, ok := value.(*ast.Text)
	if !ok {
		t.Fatalf("expected *ast.Text, got %T", value)
	}
	var joined string
	for _, part := range text.Parts {
		runes, ok := part.(*ast.PartRunes)
		if !ok {
			t.Fatalf("expected only rune parts, got %T", part)
		}
		joined += runes.Value
	}
	if joined != "a\nb{c" {
		t.Fatalf("expected decoded %q, got %q", "a\nb{c", joined)
	}
}

func TestStatementsAfterLiteralAreKept(t *testing.T) {
	program := parseOK(t, "let a = \"x\"\nlet b = 2")
	if len(program.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Stmts))
	}
	if stmt, ok := program.Stmts[1].(*ast.VariableInit); !ok || stmt.Name != "b" {
		t.Fatalf("expected 'let b' as second statement, got %#v", program.Stmts[1])
	}
}

func TestTextInterpolationHoldsExpressionTree(t *testing.T) {
	value := initValue(t, parseOK(t, `let s = "a{1 + 2 * 3}b"`))
	text, ok := value.(*ast.Text)
	if !ok {
		t.Fatalf("expected *ast.Text, got %T", value)
	}
	if len(text.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(text.Parts))
	}
	interp, ok := text.Parts[1].(*ast.PartExpr)
	if !ok {
		t.Fatalf("expected interpolation part, got %T", text.Parts[1])
	}
	add, ok := interp.X.(*ast.BinaryOp)
	if !ok || add.Op != "+" {
		t.Fatalf("expected '+' at interpolation root, got %#v", interp.X)
	}
	if mul, ok := add.Right.(*ast.BinaryOp); !ok || mul.Op != "*" {
		t.Fatalf("expected '*' as right operand, got %#v", add.Right)
	}
}

func TestListForms(t *testing.T) {
	value := initValue(t, parseOK(t, "let a = [Num]"))
	empty, ok := value.(*ast.List)
	if !ok {
		t.Fatalf("expected *ast.List, got %T", value)
	}
	if !empty.Empty() || empty.ElemType != ast.TypeNum {
		t.Fatalf("expected empty Num list, got %#v", empty)
	}

	value = initValue(t, parseOK(t, `let b = [1, "two", true]`))
	full, ok := value.(*ast.List)
	if !ok {
		t.Fatalf("expected *ast.List, got %T", value)
	}
	if full.Empty() || len(full.Elems) != 3 {
		t.Fatalf("expected 3-element list, got %#v", full)
	}
}

func TestBareEmptyListRejected(t *testing.T) {
	parseFail(t, "let a = []", diag.AmbiguousConstruct)
}

func TestMainWithAndWithoutParameter(t *testing.T) {
	program := parseOK(t, "main { run() }")
	node, ok := program.Stmts[0].(*ast.Main)
	if !ok {
		t.Fatalf("expected *ast.Main, got %T", program.Stmts[0])
	}
	if node.Arg != "" {
		t.Fatalf("expected no parameter, got %q", node.Arg)
	}

	program = parseOK(t, "main (args) { run(args) }")
	node, ok = program.Stmts[0].(*ast.Main)
	if !ok {
		t.Fatalf("expected *ast.Main, got %T", program.Stmts[0])
	}
	if node.Arg != "args" {
		t.Fatalf("expected parameter 'args', got %q", node.Arg)
	}
}

func TestFunctionDef(t *testing.T) {
	program := parseOK(t, "pub fun greet(name, greeting) { echo(greeting) }")
	node, ok := program.Stmts[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected *ast.FunctionDef, got %T", program.Stmts[0])
	}
	if !node.Pub || node.Name != "greet" || len(node.Params) != 2 {
		t.Fatalf("unexpected function def: %#v", node)
	}
}

func TestImportForms(t *testing.T) {
	program := parseOK(t, `import { foo, bar as baz } from "std/text"`)
	node, ok := program.Stmts[0].(*ast.Import)
	if !ok {
		t.Fatalf("expected *ast.Import, got %T", program.Stmts[0])
	}
	if node.Star || node.Pub || node.Path != "std/text" {
		t.Fatalf("unexpected import: %#v", node)
	}
	if len(node.Items) != 2 || node.Items[1].Alias != "baz" {
		t.Fatalf("unexpected import items: %#v", node.Items)
	}

	program = parseOK(t, `pub import * from "std/env"`)
	node, ok = program.Stmts[0].(*ast.Import)
	if !ok {
		t.Fatalf("expected *ast.Import, got %T", program.Stmts[0])
	}
	if !node.Star || !node.Pub {
		t.Fatalf("unexpected import: %#v", node)
	}
}

func TestInterpolatedImportPathRejected(t *testing.T) {
	parseFail(t, `import * from "std/{x}"`, diag.UnexpectedToken)
}

func TestTruncatedInputReportsOnce(t *testing.T) {
	diags := parseFail(t, "let x = ", diag.UnexpectedEndOfInput)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(diags))
	}
}

func TestRecoveryContinuesAfterError(t *testing.T) {
	program, diags := parseSrc(t, "let = 1\nlet y = 2")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if diags[0].Kind != diag.UnexpectedToken {
		t.Fatalf("expected UnexpectedToken, got %s", diags[0].Kind)
	}
	if len(program.Stmts) != 1 {
		t.Fatalf("expected 1 recovered statement, got %d", len(program.Stmts))
	}
	if stmt, ok := program.Stmts[0].(*ast.VariableInit); !ok || stmt.Name != "y" {
		t.Fatalf("expected recovered 'let y', got %#v", program.Stmts[0])
	}
}

func TestMultipleIndependentErrors(t *testing.T) {
	_, diags := parseSrc(t, "let = 1\nlet = 2\nlet z = 3")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
}

func TestUnterminatedText(t *testing.T) {
	parseFail(t, `let x = "abc`, diag.UnterminatedText)
}

func TestUnterminatedCommand(t *testing.T) {
	parseFail(t, "let x = $abc", diag.UnterminatedCommand)
}

func TestInvalidCharacterSurfacesAsDiagnostic(t *testing.T) {
	parseFail(t, "let x = @", diag.InvalidCharacter)
}

func TestSourceSizeLimit(t *testing.T) {
	saved := config.MaxSourceBytes
	config.MaxSourceBytes = 4
	defer func() { config.MaxSourceBytes = saved }()

	diags := parseFail(t, "let x = 1", diag.ResourceLimitExceeded)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(diags))
	}
}

func TestDiagnosticPositions(t *testing.T) {
	_, diags := parseSrc(t, "let x = 1\nlet = 2")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if got := diags[0].Span.Start; got.Line != 2 {
		t.Fatalf("expected diagnostic on line 2, got %d.%d", got.Line, got.Column)
	}
}
