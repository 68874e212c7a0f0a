package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/curve"
)

func TestCSVLineAndFieldCount(t *testing.T) {
	t.Parallel()

	swaps := []curve.Point{
		curve.NewSwapPoint(1, 0.03),
		curve.NewSwapPoint(5, 0.035),
		curve.NewSwapPoint(10, 0.04),
	}
	res, err := curve.Bootstrap(swaps, nil, curve.MethodLinear, "USD")
	require.NoError(t, err)
	n := len(res.DiscountFactors)
	require.Greater(t, n, 3)

	out := CSV(res)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, n+1)
	assert.Equal(t, "tenor,discountFactor,zeroRate,forwardRate", lines[0])

	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 4, line)
		for _, f := range fields {
			_, err := strconv.ParseFloat(f, 64)
			assert.NoError(t, err, f)
			assert.NotContains(t, f, "e")
		}
	}
	assert.Equal(t, "0.0000000000,1.0000000000", strings.Join(strings.Split(lines[1], ",")[:2], ","))
}

func TestWriteCSVRoundTripsThroughReader(t *testing.T) {
	t.Parallel()

	res := &curve.Result{DiscountFactors: []curve.GridPoint{
		{Tenor: 0, DiscountFactor: 1, ZeroRate: 0.03, ForwardRate: 0.03},
		{Tenor: 0.5, DiscountFactor: 0.9852, ZeroRate: 0.0301234567891, ForwardRate: 1e-12},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"0.5000000000", "0.9852000000", "0.0301234568", "0.0000000000"}, records[2])
}

func TestCSVEmptyResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tenor,discountFactor,zeroRate,forwardRate\n", CSV(&curve.Result{}))
	assert.Equal(t, "tenor,discountFactor,zeroRate,forwardRate\n", CSV(nil))
}
