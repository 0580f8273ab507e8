package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the tree to w.
//
func Fprint(w io.Writer, program *Program) {
	p := printer{w: w}
	for _, stmt := range program.Stmts {
		p.stmt(stmt)
	}
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func (p *printer) stmt(s Stmt) {
	switch n := s.(type) {
	case *Import:
		target := "*"
		if !n.Star {
			names := make([]string, 0, len(n.Items))
			for _, item := range n.Items {
				if item.Alias != "" {
					names = append(names, item.Name+" as "+item.Alias)
				} else {
					names = append(names, item.Name)
				}
			}
			target = "{ " + strings.Join(names, ", ") + " }"
		}
		p.line("Import pub=%t %s from %q", n.Pub, target, n.Path)
	case *FunctionDef:
		p.line("FunctionDef pub=%t %s(%s)", n.Pub, n.Name, strings.Join(n.Params, ", "))
		p.nested(func() { p.block(n.Body) })
	case *Main:
		if n.Arg != "" {
			p.line("Main (%s)", n.Arg)
		} else {
			p.line("Main")
		}
		p.nested(func() { p.block(n.Body) })
	case *VariableInit:
		p.line("VariableInit %s", n.Name)
		p.nested(func() { p.expr(n.Value) })
	case *VariableSet:
		p.line("VariableSet %s", n.Name)
		p.nested(func() {
			if n.Index != nil {
				p.line("Index")
				p.nested(func() { p.expr(n.Index) })
			}
			p.expr(n.Value)
		})
	case *If:
		p.line("If")
		p.nested(func() {
			p.expr(n.Cond)
			p.block(n.Then)
			if n.Else != nil {
				p.line("Else")
				p.nested(func() { p.block(n.Else) })
			}
		})
	case *IfChain:
		p.line("IfChain")
		p.nested(func() {
			for _, pair := range n.Pairs {
				p.expr(pair.Cond)
				p.block(pair.Body)
			}
			if n.Else != nil {
				p.line("Else")
				p.nested(func() { p.block(n.Else) })
			}
		})
	case *Loop:
		p.line("Loop")
		p.nested(func() { p.block(n.Body) })
	case *LoopArray:
		p.line("LoopArray %s", n.Var)
		p.nested(func() {
			p.expr(n.Iter)
			p.block(n.Body)
		})
	case *ExprStmt:
		p.expr(n.X)
	default:
		p.line("%T", s)
	}
}

func (p *printer) block(b *Block) {
	p.line("Block")
	p.nested(func() {
		for _, stmt := range b.Stmts {
			p.stmt(stmt)
		}
	})
}

func (p *printer) expr(e Expr) {
	switch n := e.(type) {
	case *Number:
		p.line("Number %s", n.Raw)
	case *Boolean:
		p.line("Boolean %t", n.Value)
	case *Null:
		p.line("Null")
	case *Text:
		p.line("Text")
		p.nested(func() { p.parts(n.Parts) })
	case *Command:
		p.line("Command silent=%t unsafe=%t", n.Silent, n.Unsafe)
		p.nested(func() {
			p.parts(n.Parts)
			if n.Handler != nil {
				if n.Handler.Kind == FailurePropagate {
					p.line("FailureHandler propagate")
				} else {
					p.line("FailureHandler block")
					p.nested(func() { p.block(n.Handler.Block) })
				}
			}
		})
	case *List:
		if n.Empty() {
			p.line("List [%s]", n.ElemType)
		} else {
			p.line("List")
			p.nested(func() {
				for _, elem := range n.Elems {
					p.expr(elem)
				}
			})
		}
	case *VariableGet:
		p.line("VariableGet %s", n.Name)
		if n.Index != nil {
			p.nested(func() { p.expr(n.Index) })
		}
	case *FunctionCall:
		p.line("FunctionCall %s", n.Name)
		p.nested(func() {
			for _, arg := range n.Args {
				p.expr(arg)
			}
		})
	case *BinaryOp:
		p.line("BinaryOp %s", n.Op)
		p.nested(func() {
			p.expr(n.Left)
			p.expr(n.Right)
		})
	case *UnaryOp:
		p.line("UnaryOp %s", n.Op)
		p.nested(func() { p.expr(n.X) })
	case *Ternary:
		p.line("Ternary")
		p.nested(func() {
			p.expr(n.Cond)
			p.expr(n.Then)
			p.expr(n.Else)
		})
	case *Range:
		op := ".."
		if n.Inclusive {
			op = "..="
		}
		p.line("Range %s", op)
		p.nested(func() {
			p.expr(n.Start)
			p.expr(n.End)
		})
	default:
		p.line("%T", e)
	}
}

func (p *printer) parts(parts []Part) {
	for _, part := range parts {
		switch n := part.(type) {
		case *PartRunes:
			p.line("Runes %q", n.Value)
		case *PartExpr:
			p.line("Interp")
			p.nested(func() { p.expr(n.X) })
		}
	}
}
