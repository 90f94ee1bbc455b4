// Command shaderscriptc compiles a shaderscript source file, printing the
// rewritten host text (and any emitted shader text, with -shaders) to
// stdout or to the path named by -o.
//
// Usage:
//
//	shaderscriptc [options] <input>
//
// Examples:
//
//	shaderscriptc kernels.ts                  # rewritten host text to stdout
//	shaderscriptc -o out.ts kernels.ts        # rewritten host text to file
//	shaderscriptc -shaders kernels.ts         # also dump each emitted shader
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"shaderscript/pkg/compiler"
)

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	runtime_ = flag.String("runtime", "./runtime", "import path injected for the runtime symbol")
	memoize  = flag.Bool("memoize", false, "memoize the Type Mapper across this run")
	shaders  = flag.Bool("shaders", false, "also print each emitted shader program")
	version  = flag.Bool("version", false, "print version")
)

func moduleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("shaderscriptc version %s\n", moduleVersion())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	opts := compiler.Options{RuntimeModule: *runtime_, Memoize: *memoize}
	result, err := compiler.CompileSource(inputPath, string(source), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	out := result.HostText
	if *shaders {
		for name, text := range result.Shaders {
			out += fmt.Sprintf("\n// ---- shader: %s ----\n%s\n", name, text)
		}
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s\n", inputPath, *output)
		return
	}
	fmt.Print(out)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderscriptc [options] <input>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  shaderscriptc kernels.ts              Rewritten host text to stdout\n")
	fmt.Fprintf(os.Stderr, "  shaderscriptc -o out.ts kernels.ts     Rewritten host text to file\n")
	fmt.Fprintf(os.Stderr, "  shaderscriptc -shaders kernels.ts      Also print each emitted shader\n")
}
