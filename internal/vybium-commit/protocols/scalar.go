package protocols

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// maxExponent bounds the decimal exponent accepted in number text
const maxExponent = 1000

var decimalPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?([0-9]+))?$`)

// Scalar is an exact decimal number carried through the pipeline unchanged.
// The zero value is unset.
type Scalar struct {
	value *big.Rat
}

// IntScalar creates a scalar holding an integer
func IntScalar(v *big.Int) Scalar {
	if v == nil {
		return Scalar{}
	}
	return Scalar{value: new(big.Rat).SetInt(v)}
}

// ParseScalar parses decimal number text such as "4", "-5236", "4.05" or "1e3"
func ParseScalar(text string) (Scalar, error) {
	text = strings.TrimSpace(text)
	match := decimalPattern.FindStringSubmatch(text)
	if match == nil {
		return Scalar{}, fmt.Errorf("%q is not a decimal number", text)
	}
	if match[3] != "" {
		exp, err := strconv.Atoi(match[3])
		if err != nil || exp > maxExponent {
			return Scalar{}, fmt.Errorf("exponent of %q out of range", text)
		}
	}

	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return Scalar{}, fmt.Errorf("%q is not a decimal number", text)
	}
	return Scalar{value: r}, nil
}

// IsSet reports whether the scalar holds a value
func (s Scalar) IsSet() bool {
	return s.value != nil
}

// Int returns the scalar as an integer when it has no fractional part
func (s Scalar) Int() (*big.Int, bool) {
	if s.value == nil || !s.value.IsInt() {
		return nil, false
	}
	return new(big.Int).Set(s.value.Num()), true
}

// String renders the shortest exact decimal text of the scalar
func (s Scalar) String() string {
	if s.value == nil {
		return ""
	}
	if s.value.IsInt() {
		return s.value.Num().String()
	}
	return s.value.FloatString(fractionDigits(s.value.Denom()))
}

// fractionDigits returns the number of decimal places needed to write 1/d
// exactly. d is a product of powers of 2 and 5 for any value parsed from
// decimal text.
func fractionDigits(d *big.Int) int {
	rest := new(big.Int).Set(d)
	two, five := big.NewInt(2), big.NewInt(5)
	mod := new(big.Int)

	twos := 0
	for rest.Cmp(big.NewInt(1)) > 0 {
		if mod.Mod(rest, two).Sign() != 0 {
			break
		}
		rest.Quo(rest, two)
		twos++
	}
	fives := 0
	for rest.Cmp(big.NewInt(1)) > 0 {
		if mod.Mod(rest, five).Sign() != 0 {
			break
		}
		rest.Quo(rest, five)
		fives++
	}
	return max(twos, fives)
}
