package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/bootstrap"
	"github.com/meenmo/curvekit/cmd/curvekit/internal/compare"
	"github.com/meenmo/curvekit/cmd/curvekit/internal/export"
	"github.com/meenmo/curvekit/cmd/curvekit/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "bootstrap":
		return bootstrap.Run(args[1:], stdin, stdout, stderr)
	case "export", "csv":
		return export.Run(args[1:], stdin, stdout, stderr)
	case "compare":
		return compare.Run(args[1:], stdin, stdout, stderr)
	case "serve":
		return server.Run(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: curvekit <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  bootstrap  Bootstrap one curve, JSON out")
	fmt.Fprintln(w, "  export     Bootstrap one curve, CSV out")
	fmt.Fprintln(w, "  compare    Run every method on the same quotes")
	fmt.Fprintln(w, "  serve      Start the HTTP API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `curvekit <command> -h` for command-specific help.")
}
