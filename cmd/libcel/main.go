// Command libcel evaluates a single CEL expression against bindings given
// on the command line.
//
//	libcel [-debug] '<expression>' [name=value]...
//
// Each name=value argument is classified as an int, then a double, then a
// bool, then falls back to a plain string, by attempting each parse in
// that order — mirroring the plain flag/os style db47h/ngaro's retro
// command uses rather than pulling in a CLI framework for a one-shot tool.
//
// -debug prints the parsed AST and any static diagnostics before
// evaluating, using pkg/visitors' DebugPrinter and SemanticAnalyzer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/libdbm/libcel"
	"github.com/libdbm/libcel/pkg/value"
	"github.com/libdbm/libcel/pkg/visitors"
)

func main() {
	debug := flag.Bool("debug", false, "print the parsed AST and static diagnostics before evaluating")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: libcel [-debug] <expression> [name=value]...")
		os.Exit(2)
	}

	expression := args[0]
	bindings, err := parseBindings(args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	prog, err := libcel.CompileCached(expression)
	if err != nil {
		fmt.Printf("Parse error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		printer := visitors.NewDebugPrinter()
		prog.Expr().Accept(printer)
		fmt.Fprint(os.Stderr, printer.String())

		for _, d := range visitors.NewSemanticAnalyzer().Analyze(prog.Expr()) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d)
		}
	}

	result, err := prog.Evaluate(bindings)
	if err != nil {
		fmt.Printf("Evaluation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(value.ToDisplayString(result))
}

func parseBindings(args []string) (map[string]value.Value, error) {
	bindings := make(map[string]value.Value, len(args))
	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("malformed binding %q, want name=value", arg)
		}
		bindings[name] = classify(text)
	}
	return bindings, nil
}

// classify attempts int, then double, then bool, then falls back to string.
func classify(text string) value.Value {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.Int(i)
	}
	if d, err := strconv.ParseFloat(text, 64); err == nil {
		return value.Double(d)
	}
	if b, err := strconv.ParseBool(text); err == nil {
		return value.Bool(b)
	}
	return value.String(text)
}
