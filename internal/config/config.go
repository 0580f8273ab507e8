package config

import (
	"io"
	"log"
	"reflect"
	"runtime"
)

// Me stores the name we consider the parser to be running as.
//
var Me string

// ErrOut is where logs and errors are sent to (generally stderr).
//
var ErrOut io.Writer

// SourceFile stores the path of the source file being parsed.
//
var SourceFile string

// MaxNestingDepth caps how deep text/command interpolations may nest.
// Exceeding it is reported as a NestingTooDeep diagnostic rather than
// letting adversarial input chew through the call stack.
//
var MaxNestingDepth = 32

// MaxSourceBytes caps the size of a source buffer we are willing to parse.
// 0 = no limit.
//
var MaxSourceBytes = 0

// EnableFnTrace shows parser/lexer fn call/stack
//
var EnableFnTrace = false

// TraceFn logs lexer transitions
//
func TraceFn(msg string, i interface{}) {
	if EnableFnTrace {
		fnName := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
		log.Println(msg, ":", fnName)
	}
}
