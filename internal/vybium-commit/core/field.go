package core

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrInvalidInput is returned when a value cannot be lifted into the field
	ErrInvalidInput = errors.New("invalid field input")

	// ErrFieldRange is returned when a value escapes the canonical range [0, p)
	ErrFieldRange = errors.New("field range violation")
)

// fieldModulus is the BN254 scalar field order, the field of the downstream circuit.
var fieldModulus = fr.Modulus()

// Modulus returns the field modulus
func Modulus() *big.Int {
	return new(big.Int).Set(fieldModulus)
}

// FieldElement represents an element of the BN254 scalar field.
//
// The zero value is the additive identity. Elements are values: every
// operation returns a new element and never mutates its operands.
type FieldElement struct {
	value fr.Element
}

// Lift reduces a non-negative arbitrary-precision integer modulo p
func Lift(value *big.Int) (FieldElement, error) {
	if value == nil {
		return FieldElement{}, fmt.Errorf("%w: nil integer", ErrInvalidInput)
	}
	if value.Sign() < 0 {
		return FieldElement{}, fmt.Errorf("%w: negative integer %s", ErrInvalidInput, value.String())
	}

	var fe FieldElement
	fe.value.SetBigInt(value)
	return fe, nil
}

// LiftAll lifts every integer of a sequence, preserving order
func LiftAll(values []*big.Int) ([]FieldElement, error) {
	result := make([]FieldElement, len(values))
	for i, v := range values {
		fe, err := Lift(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		result[i] = fe
	}
	return result, nil
}

// LiftUint64 creates a field element from a uint64
func LiftUint64(value uint64) FieldElement {
	var fe FieldElement
	fe.value.SetUint64(value)
	return fe
}

// ParseDecimal parses base-10 text as an arbitrary-precision integer and lifts it
func ParseDecimal(text string) (FieldElement, error) {
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return FieldElement{}, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidInput, text)
	}
	return Lift(value)
}

// CheckRange verifies that value is a canonical representative in [0, p)
func CheckRange(value *big.Int) error {
	if value == nil || value.Sign() < 0 || value.Cmp(fieldModulus) >= 0 {
		return fmt.Errorf("%w: %v not in [0, p)", ErrFieldRange, value)
	}
	return nil
}

// Zero returns the additive identity
func Zero() FieldElement {
	return FieldElement{}
}

// One returns the multiplicative identity
func One() FieldElement {
	return FieldElement{value: fr.One()}
}

// Add performs field addition
func (fe FieldElement) Add(other FieldElement) FieldElement {
	var result FieldElement
	result.value.Add(&fe.value, &other.value)
	return result
}

// Mul performs field multiplication
func (fe FieldElement) Mul(other FieldElement) FieldElement {
	var result FieldElement
	result.value.Mul(&fe.value, &other.value)
	return result
}

// Equal checks if two field elements are equal
func (fe FieldElement) Equal(other FieldElement) bool {
	return fe.value.Equal(&other.value)
}

// IsZero checks if the element is zero
func (fe FieldElement) IsZero() bool {
	return fe.value.IsZero()
}

// Big returns the canonical representative as a big.Int
func (fe FieldElement) Big() *big.Int {
	return fe.value.BigInt(new(big.Int))
}

// String renders the canonical representative in base 10
func (fe FieldElement) String() string {
	return fe.Big().String()
}

// ToDecimalStrings renders a sequence of field elements in base 10
func ToDecimalStrings(elems []FieldElement) []string {
	result := make([]string, len(elems))
	for i, e := range elems {
		result[i] = e.String()
	}
	return result
}
