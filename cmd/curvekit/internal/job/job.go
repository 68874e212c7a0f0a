// Package job runs bootstrap requests for the CLI and the HTTP server.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/curve"
	"github.com/meenmo/curvekit/quotes"
	"github.com/meenmo/curvekit/utils"
)

// ErrInvalidRequest marks failures caused by the request content rather than the engine.
var ErrInvalidRequest = errors.New("invalid request")

// Output is the JSON document written by `curvekit bootstrap` and POST /api/v1/bootstrap.
type Output struct {
	AsOf    string        `json:"asOf,omitempty"`
	Result  *curve.Result `json:"result,omitempty"`
	Skipped []string      `json:"skipped,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Summary is one row of a method comparison.
type Summary struct {
	Method      curve.Method              `json:"method"`
	GridPoints  int                       `json:"gridPoints"`
	Adjusted    int                       `json:"adjusted"`
	Monotone    bool                      `json:"monotone"`
	Zero2Y      float64                   `json:"zero2y"`
	Zero5Y      float64                   `json:"zero5y"`
	Zero10Y     float64                   `json:"zero10y"`
	Parameters  *curve.NelsonSiegelParams `json:"parameters,omitempty"`
	DurationMic int64                     `json:"durationMicros"`
}

// CompareOutput is the JSON document written by `curvekit compare` and POST /api/v1/compare.
type CompareOutput struct {
	AsOf     string    `json:"asOf,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Methods  []Summary `json:"methods,omitempty"`
	Skipped  []string  `json:"skipped,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Runner binds an engine to the named curves of a config file.
type Runner struct {
	Engine *curve.Engine
	File   *config.File
	Log    zerolog.Logger
	Now    func() time.Time
}

// NewRunner builds a Runner from a loaded config file.
func NewRunner(file *config.File, logger zerolog.Logger) *Runner {
	return &Runner{
		Engine: curve.NewEngine(file.Solver, logger),
		File:   file,
		Log:    logger,
		Now:    time.Now,
	}
}

// Prepared is a validated request with its quotes converted to points.
type Prepared struct {
	AsOf    time.Time
	Curve   config.CurveConfig
	Method  curve.Method
	Swaps   []curve.Point
	Futures []curve.Point
	Skipped []string
}

// Prepare resolves the curve config, method and as-of date, then converts the quotes.
func (r *Runner) Prepare(req quotes.Request) (*Prepared, error) {
	cc, err := r.resolveCurve(req.Curve)
	if err != nil {
		return nil, err
	}
	req.Curve = cc

	method, err := req.ResolveMethod()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	asOf, err := req.AsOfDate(r.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	swaps, futures, skipped := req.Points(asOf, r.Log)
	p := &Prepared{
		AsOf:    utils.Truncate(asOf),
		Curve:   cc,
		Method:  method,
		Swaps:   swaps,
		Futures: futures,
	}
	for _, e := range skipped {
		p.Skipped = append(p.Skipped, e.Error())
	}
	return p, nil
}

// resolveCurve fills a request curve from the config file when only its name is given.
func (r *Runner) resolveCurve(cc config.CurveConfig) (config.CurveConfig, error) {
	if strings.TrimSpace(cc.Currency) == "" && cc.Name != "" && r.File != nil {
		if known, ok := r.File.Curve(cc.Name); ok {
			cc = known
		}
	}
	if strings.TrimSpace(cc.Currency) == "" {
		return cc, fmt.Errorf("%w: curve currency is required", ErrInvalidRequest)
	}
	if !cc.Futures.Enabled && !cc.Swaps.Enabled && cc.Futures.Index == "" && cc.Swaps.Index == "" {
		// A bare currency enables both families with the registry feeds.
		def := config.DefaultCurveConfig(cc.Currency)
		def.Name = cc.Name
		def.Method = cc.Method
		cc = def
	}
	cc = cc.WithCurrency(cc.Currency)
	if err := cc.Validate(); err != nil {
		return cc, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return cc, nil
}

// Bootstrap prepares the request and runs one method.
func (r *Runner) Bootstrap(req quotes.Request) (*Output, error) {
	p, err := r.Prepare(req)
	if err != nil {
		return nil, err
	}
	res, err := r.Engine.Bootstrap(p.Swaps, p.Futures, p.Method, p.Curve.Currency)
	if err != nil {
		return nil, err
	}
	return &Output{AsOf: p.AsOf.Format("2006-01-02"), Result: res, Skipped: p.Skipped}, nil
}

// Compare runs every method on the same prepared point set in parallel.
func (r *Runner) Compare(ctx context.Context, req quotes.Request) (*CompareOutput, error) {
	p, err := r.Prepare(req)
	if err != nil {
		return nil, err
	}

	methods := curve.Methods()
	rows := make([]Summary, len(methods))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range methods {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := r.Engine.Bootstrap(p.Swaps, p.Futures, m, p.Curve.Currency)
			if err != nil {
				return err
			}
			rows[i] = summarize(res, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CompareOutput{
		AsOf:     p.AsOf.Format("2006-01-02"),
		Currency: p.Curve.Currency,
		Methods:  rows,
		Skipped:  p.Skipped,
	}, nil
}

func summarize(res *curve.Result, took time.Duration) Summary {
	s := Summary{
		Method:      res.Method,
		GridPoints:  len(res.DiscountFactors),
		Adjusted:    len(res.AdjustedPoints()),
		Monotone:    true,
		Parameters:  res.Parameters,
		DurationMic: took.Microseconds(),
	}
	for i := 1; i < len(res.DiscountFactors); i++ {
		if res.DiscountFactors[i].DiscountFactor > res.DiscountFactors[i-1].DiscountFactor {
			s.Monotone = false
			break
		}
	}
	if !res.Empty() {
		s.Zero2Y = utils.RoundTo(res.ZeroRateAt(2), 8)
		s.Zero5Y = utils.RoundTo(res.ZeroRateAt(5), 8)
		s.Zero10Y = utils.RoundTo(res.ZeroRateAt(10), 8)
	}
	return s
}

// Options are the flags shared by the request-driven subcommands.
type Options struct {
	Input  string
	Config string
}

// ParseFlags parses -input, -config and -h. ok is false when the caller should return code.
func ParseFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (opts Options, code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	configPath := fs.String("config", "", "YAML config path (optional)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return opts, 2, false
	}
	if *help {
		usage(stderr)
		return opts, 0, false
	}
	return Options{Input: strings.TrimSpace(*inputPath), Config: strings.TrimSpace(*configPath)}, 0, true
}

// Load reads the config file and request named by opts and returns a ready Runner.
func Load(opts Options, stdin io.Reader, stderr io.Writer) (*Runner, quotes.Request, error) {
	file, err := config.Load(opts.Config)
	if err != nil {
		return nil, quotes.Request{}, err
	}
	logger := utils.NewLoggerTo(stderr, file.App.LogLevel)

	b, err := ReadInput(stdin, opts.Input)
	if err != nil {
		return nil, quotes.Request{}, fmt.Errorf("failed to read input: %w", err)
	}
	req, err := DecodeRequest(b)
	if err != nil {
		return nil, quotes.Request{}, err
	}
	return NewRunner(file, logger), req, nil
}

// DecodeRequest parses a JSON request body.
func DecodeRequest(b []byte) (quotes.Request, error) {
	var req quotes.Request
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("%w: failed to parse JSON input: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// ReadInput reads the request from path, or from stdin when path is empty.
func ReadInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

// StdinIsTerminal reports whether stdin is an interactive terminal with nothing piped in.
func StdinIsTerminal(stdin io.Reader) bool {
	if f, ok := stdin.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return true
		}
	}
	return false
}

// WriteJSON writes v as one line of JSON.
func WriteJSON(w io.Writer, v any) {
	b, _ := json.Marshal(v)
	fmt.Fprintln(w, string(b))
}

// WriteError writes {"error": msg} and returns the failure exit code.
func WriteError(w io.Writer, msg string) int {
	WriteJSON(w, Output{Error: msg})
	return 1
}
