package compare

import (
	"context"
	"fmt"
	"io"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/job"
)

// Run bootstraps the same quotes with every method and writes a summary per method.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, code, ok := job.ParseFlags("compare", args, stderr, usage)
	if !ok {
		return code
	}
	if opts.Input == "" && job.StdinIsTerminal(stdin) {
		usage(stderr)
		return 2
	}

	runner, req, err := job.Load(opts, stdin, stderr)
	if err != nil {
		return job.WriteError(stdout, err.Error())
	}

	out, err := runner.Compare(context.Background(), req)
	if err != nil {
		return job.WriteError(stdout, err.Error())
	}
	job.WriteJSON(stdout, out)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  curvekit compare < input.json")
	fmt.Fprintln(w, "  curvekit compare -input /path/to/input.json [-config curvekit.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run all eight methods on the same quotes and print 2Y/5Y/10Y zero rates per method.")
}
