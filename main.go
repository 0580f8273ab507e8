package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/amber-lang/amber-go/internal/ast"
	"github.com/amber-lang/amber-go/internal/config"
	"github.com/amber-lang/amber-go/internal/lexer"
	"github.com/amber-lang/amber-go/internal/parser"
	"github.com/amber-lang/amber-go/internal/util"
)

const (
	sourceDefault = "main.ab"
	sourceEnv     = "AMBERFILE"
)

var (
	hidePanic = true // Hide full trace on panics
	checkOnly = false
)

// showUsageHint prints a terse usage string.
//
func showUsageHint() {
	_, _ = fmt.Fprintf(config.ErrOut, "see '%s --help' for more information\n", config.Me)
}

// showHelp
//
//goland:noinspection GoUnhandledErrorResult // fmt.*
func showHelp() {
	pad := strings.Repeat(" ", len(config.Me)-1)
	fmt.Fprintf(config.ErrOut, "Usage:\n")
	fmt.Fprintf(config.ErrOut, "       %s [option ...] [file]\n", config.Me)
	fmt.Fprintf(config.ErrOut, "       %s (parse <file> and print its syntax tree)\n", pad)

	fmt.Fprintf(config.ErrOut, "  or   %s version\n", config.Me)
	fmt.Fprintf(config.ErrOut, "       %s (show version)\n", pad)

	fmt.Fprintln(config.ErrOut, "Options:")
	fmt.Fprintln(config.ErrOut, "  -c, --check")
	fmt.Fprintln(config.ErrOut, "        Report diagnostics only, don't print the tree")
	fmt.Fprintln(config.ErrOut, "  --max-depth <n>")
	fmt.Fprintf(config.ErrOut, "        Limit interpolation nesting (default=%d)\n", config.MaxNestingDepth)
	fmt.Fprintln(config.ErrOut, "  --trace")
	fmt.Fprintln(config.ErrOut, "        Trace lexer/parser state functions")
	fmt.Fprintln(config.ErrOut, "Note:")
	fmt.Fprintf(config.ErrOut, "  With no <file>, '${%s:-%s}' is parsed\n", sourceEnv, sourceDefault)
	fmt.Fprintln(config.ErrOut, "  Options accept '-' | '--'")
	fmt.Fprintln(config.ErrOut, "  Values can be given as:")
	fmt.Fprintln(config.ErrOut, "        -o value | -o=value")
}

// showVersion
//
func showVersion() {
	fmt.Println("amber-parse", versionString())
}

// main
//
//goland:noinspection GoUnhandledErrorResult // fmt.*
func main() {
	// NOTE: Instead of os.Exit, set exitCode then return
	// os.Exit aborts program immediately, so delay as long as possible
	//
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	config.ErrOut = os.Stderr
	config.Me = path.Base(os.Args[0])
	// Configure logging
	//
	log.SetFlags(0)
	log.SetPrefix(config.Me + ": ")
	// Capture panics as log messages
	//
	//goland:noinspection GoBoolExpressions
	if hidePanic {
		defer func() {
			if r := recover(); r != nil {
				// ~= log.Fatal
				log.Print(r)
				exitCode = 1
			}
		}()
	}
	// Version?
	//
	if len(os.Args) > 1 && strings.EqualFold(os.Args[1], "version") {
		showVersion()
		return // Exit early
	}
	exitCode = parseArgs()
	if exitCode != 0 {
		return
	}
	// Source file: arg wins, then $AMBERFILE, then the default
	//
	switch len(os.Args) {
	case 0:
		config.SourceFile = util.GetEnvOrDefault(sourceEnv, sourceDefault)
	case 1:
		config.SourceFile = os.Args[0]
	default:
		log.Printf("unexpected argument: %s", os.Args[1])
		showUsageHint()
		exitCode = 2
		return
	}
	fileBytes, exists, err := util.ReadFileIfExists(config.SourceFile)
	if !exists {
		if err == nil {
			log.Printf("ERROR: file '%s' not found: please create the file or specify an alternative", util.DefaultIfEmpty(config.SourceFile, sourceDefault))
		} else {
			// If path error, hide the operation (stat, open, etc)
			//
			if pathErr, ok := err.(*os.PathError); ok {
				log.Printf("ERROR: %s: %s", pathErr.Path, pathErr.Err)
			} else {
				log.Printf("ERROR: %s", err)
			}
		}
		exitCode = 2
		return
	}
	// Parse the file
	//
	program, diags := parser.Parse(lexer.Lex(fileBytes))
	for _, d := range diags {
		fmt.Fprintf(config.ErrOut, "%s:%s (%s)\n", config.SourceFile, d.Error(), d.Kind)
	}
	if len(diags) > 0 {
		exitCode = 1
		return
	}
	if !checkOnly {
		ast.Fprint(os.Stdout, program)
	}
}

func parseArgs() int {
	flag.CommandLine.Init(config.Me, flag.ContinueOnError)
	flag.CommandLine.SetOutput(config.ErrOut)

	var showHelpFlag bool
	flag.BoolVar(&showHelpFlag, "help", false, "")
	flag.BoolVar(&showHelpFlag, "h", false, "")
	flag.BoolVar(&checkOnly, "check", false, "")
	flag.BoolVar(&checkOnly, "c", false, "")
	flag.BoolVar(&config.EnableFnTrace, "trace", false, "")
	flag.IntVar(&config.MaxNestingDepth, "max-depth", config.MaxNestingDepth, "")
	exitCode := 0
	// Invoked if error parsing args - sets exit code 2
	//
	flag.CommandLine.Usage = func() {
		showUsageHint()
		exitCode = 2
	}
	flag.Parse()
	if exitCode != 0 {
		return exitCode
	}
	// Help?
	//
	if showHelpFlag {
		showHelp()
		return 2
	}
	if config.MaxNestingDepth < 1 {
		log.Printf("invalid --max-depth: %d", config.MaxNestingDepth)
		showUsageHint()
		return 2
	}
	os.Args = flag.Args()
	return 0
}
