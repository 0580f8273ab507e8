package ast

import (
	"strings"
	"testing"
)

func TestFprintIndentsNestedNodes(t *testing.T) {
	program := &Program{
		Stmts: []Stmt{
			&VariableInit{
				Name: "x",
				Value: &BinaryOp{
					Op:    "+",
					Left:  &Number{Raw: "1", Value: 1},
					Right: &Number{Raw: "2", Value: 2},
				},
			},
		},
	}
	var sb strings.Builder
	Fprint(&sb, program)
	want := "VariableInit x\n" +
		"  BinaryOp +\n" +
		"    Number 1\n" +
		"    Number 2\n"
	if sb.String() != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, sb.String())
	}
}

func TestFprintCommand(t *testing.T) {
	program := &Program{
		Stmts: []Stmt{
			&ExprStmt{
				X: &Command{
					Silent: true,
					Parts: []Part{
						&PartRunes{Value: "echo "},
						&PartExpr{X: &VariableGet{Name: "name"}},
					},
					Handler: &FailureHandler{Kind: FailurePropagate},
				},
			},
		},
	}
	var sb strings.Builder
	Fprint(&sb, program)
	out := sb.String()
	for _, want := range []string{
		"Command silent=true unsafe=false\n",
		"  Runes \"echo \"\n",
		"  Interp\n",
		"    VariableGet name\n",
		"  FailureHandler propagate\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
