// Package export renders bootstrap results as flat tables.
package export

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"

	"github.com/meenmo/curvekit/curve"
)

// Header is the first CSV row.
var Header = []string{"tenor", "discountFactor", "zeroRate", "forwardRate"}

// places is the fixed number of decimals written for every field.
const places = 10

// WriteCSV writes a header and one row per grid point, numbers fixed to ten decimals with no
// grouping or exponent.
func WriteCSV(w io.Writer, res *curve.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	if res != nil {
		for _, gp := range res.DiscountFactors {
			row := []string{
				format(gp.Tenor),
				format(gp.DiscountFactor),
				format(gp.ZeroRate),
				format(gp.ForwardRate),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders the result as a CSV string.
func CSV(res *curve.Result) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer do not fail.
	_ = WriteCSV(&buf, res)
	return buf.String()
}

func format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
