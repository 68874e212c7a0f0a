package export

import (
	"fmt"
	"io"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/job"
	csvexport "github.com/meenmo/curvekit/export"
)

// Run bootstraps like `curvekit bootstrap` and writes the grid as CSV. Errors are still
// reported as a JSON document.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, code, ok := job.ParseFlags("export", args, stderr, usage)
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

	out, err := runner.Bootstrap(req)
	if err != nil {
		return job.WriteError(stdout, err.Error())
	}
	for _, s := range out.Skipped {
		fmt.Fprintf(stderr, "skipped: %s\n", s)
	}
	if err := csvexport.WriteCSV(stdout, out.Result); err != nil {
		return job.WriteError(stdout, fmt.Sprintf("failed to write CSV: %v", err))
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  curvekit export < input.json > curve.csv")
	fmt.Fprintln(w, "  curvekit export -input /path/to/input.json [-config curvekit.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Same input as `curvekit bootstrap`; writes tenor,discountFactor,zeroRate,forwardRate rows.")
}
