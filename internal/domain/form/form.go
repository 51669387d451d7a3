// Package form parses the prediction form the way the browser page does.
//
// Range inputs submit their value as text. Income is read with parseFloat
// and spending with parseInt, so leading numeric prefixes are accepted
// ("72.5k" -> 72.5, "40.9" -> 40) and anything without one is not a number.
package form

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/segview/internal/domain/segment"
)

// Field names posted by the prediction form.
const (
	FieldIncome   = "income"
	FieldSpending = "spending"
)

// InvalidValuesMessage is shown when either value is not a number.
const InvalidValuesMessage = "Please enter valid values"

// ErrInvalidValues is returned when either form value does not parse.
var ErrInvalidValues = errors.New(InvalidValuesMessage)

// Input holds the raw form values as submitted.
type Input struct {
	Income   string
	Spending string
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	hexPrefix   = regexp.MustCompile(`^([+-]?)0[xX]([0-9a-fA-F]+)`)
	hexMarker   = regexp.MustCompile(`^[+-]?0[xX]`)
)

// ParseFloat mirrors parseFloat: the longest decimal prefix after leading
// whitespace, or NaN. Infinite results are reported as NaN because they
// cannot travel in a JSON body.
func ParseFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseInt mirrors parseInt without a radix: a "0x" prefix selects base 16,
// otherwise the longest decimal integer prefix is used. ok is false when no
// digits are found or the value overflows. A "0x" with no hex digit after
// it is not a number.
func ParseInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	if hexMarker.MatchString(s) {
		m := hexPrefix.FindStringSubmatch(s)
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseInt(m[1]+m[2], 16, 0)
		if err != nil {
			return 0, false
		}
		return int(v), true
	}
	m := intPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(m, 10, 0)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// Request converts the raw input into a PredictionRequest.
func (in Input) Request() (segment.PredictionRequest, error) {
	income := ParseFloat(in.Income)
	spending, ok := ParseInt(in.Spending)
	if math.IsNaN(income) || !ok {
		return segment.PredictionRequest{}, ErrInvalidValues
	}
	return segment.PredictionRequest{AnnualIncome: income, SpendingScore: spending}, nil
}
