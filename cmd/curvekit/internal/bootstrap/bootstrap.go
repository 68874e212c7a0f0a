package bootstrap

import (
	"errors"
	"fmt"
	"io"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/job"
)

// Run reads a quote batch as JSON, bootstraps one curve and writes the result as JSON.
//
// Input schema:
//
//	{
//	  "asOf": "2025-11-21",                      // optional, defaults to today
//	  "curve": {"name": "usd-sofr", "currency": "USD",
//	            "swaps": {"enabled": true}, "futures": {"enabled": true}},
//	  "method": "bloomberg",                     // optional, falls back to curve.method, then linear
//	  "swaps":   [{"maturity": "2Y", "value": "3.95"}],   // percent
//	  "futures": [{"maturity": "SR3Z5", "value": 96.10}]  // price, 100 - rate%
//	}
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, code, ok := job.ParseFlags("bootstrap", args, stderr, usage)
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
		return job.WriteError(stdout, describe(err))
	}
	job.WriteJSON(stdout, out)
	return 0
}

func describe(err error) string {
	if errors.Is(err, job.ErrInvalidRequest) {
		return err.Error()
	}
	return fmt.Sprintf("bootstrap failed: %v", err)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  curvekit bootstrap < input.json")
	fmt.Fprintln(w, "  curvekit bootstrap -input /path/to/input.json [-config curvekit.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read JSON quotes, bootstrap the discount curve, output JSON to stdout.")
}
