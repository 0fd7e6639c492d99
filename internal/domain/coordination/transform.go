package coordination

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/propside/syncd/internal/snapshot"
)

type transformFunc func(snapshot.Value) (snapshot.Value, error)

var transforms = map[Transform]transformFunc{
	TransformCopy:      transformCopy,
	TransformFormat:    transformFormat,
	TransformAggregate: transformAggregate,
	TransformReference: transformReference,
}

// applyTransform runs the named transform on v.
func applyTransform(t Transform, v snapshot.Value) (snapshot.Value, error) {
	fn, ok := transforms[t]
	if !ok {
		return snapshot.Null(), fmt.Errorf("%w: %s", ErrUnknownTransform, t)
	}
	return fn(v)
}

func transformCopy(v snapshot.Value) (snapshot.Value, error) {
	return v, nil
}

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// transformFormat renders the value for display: numbers become grouped
// dollar amounts, everything else is coerced to its string rendering.
// Strings pass through untouched, date strings included.
func transformFormat(v snapshot.Value) (snapshot.Value, error) {
	switch v.Kind() {
	case snapshot.KindNumber:
		formatted := currencyPrinter.Sprintf("$%v", number.Decimal(v.NumberVal(), number.MaxFractionDigits(0)))
		return snapshot.String(formatted), nil
	case snapshot.KindString:
		return v, nil
	default:
		return snapshot.String(v.Render()), nil
	}
}

// transformAggregate sums a list. Elements that are not numbers are coerced
// leniently: numeric strings parse, booleans count as 1 or 0, anything else
// contributes 0. Non-list inputs pass through unchanged.
func transformAggregate(v snapshot.Value) (snapshot.Value, error) {
	if v.Kind() != snapshot.KindList {
		return v, nil
	}
	var sum float64
	for _, el := range v.Elems() {
		sum += coerceNumber(el)
	}
	return snapshot.Number(sum), nil
}

func coerceNumber(v snapshot.Value) float64 {
	switch v.Kind() {
	case snapshot.KindNumber:
		return v.NumberVal()
	case snapshot.KindString:
		if n, err := strconv.ParseFloat(v.StringVal(), 64); err == nil {
			return n
		}
		return 0
	case snapshot.KindBool:
		if v.BoolVal() {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// transformReference wraps the value in a reference marker instead of
// copying the content itself.
func transformReference(v snapshot.Value) (snapshot.Value, error) {
	return snapshot.String("[ref:" + v.Render() + "]"), nil
}
