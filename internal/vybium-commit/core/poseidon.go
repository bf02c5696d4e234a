package core

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/iden3/go-iden3-crypto/utils"
)

// FieldFriendlyHash maps a sequence of field elements to one field element
type FieldFriendlyHash interface {
	Hash(inputs []FieldElement) (FieldElement, error)
}

// PoseidonParameters describes the Poseidon permutation family used for commitments.
//
// The family is the circomlib instantiation over the BN254 scalar field: one
// capacity word, a rate of 1..16 words (width t = rate + 1), the x^5 S-box,
// 8 full rounds and a width-dependent number of partial rounds. The round
// constants and MDS matrices for every width are the circomlib tables; they
// are initialized once per process by the backend and never mutated.
//
// A PoseidonParameters value has no setters. The shared default instance is
// built once at package initialization.
type PoseidonParameters struct {
	fieldModulus  *big.Int
	roundsFull    int   // RF
	roundsPartial []int // RP for width t at index t-2
	sboxPower     int   // α
}

// circomRoundsPartial is the circomlib partial-round schedule for t = 2..17.
var circomRoundsPartial = []int{56, 57, 56, 60, 60, 63, 64, 63, 60, 66, 60, 65, 70, 60, 64, 68}

var defaultPoseidonParameters = &PoseidonParameters{
	fieldModulus:  Modulus(),
	roundsFull:    8,
	roundsPartial: append([]int(nil), circomRoundsPartial...),
	sboxPower:     5,
}

// DefaultPoseidonParameters returns the process-wide circomlib parameter set
func DefaultPoseidonParameters() *PoseidonParameters {
	return defaultPoseidonParameters
}

// FieldModulus returns the prime the permutation operates over
func (pp *PoseidonParameters) FieldModulus() *big.Int {
	return new(big.Int).Set(pp.fieldModulus)
}

// RoundsFull returns the number of full rounds
func (pp *PoseidonParameters) RoundsFull() int {
	return pp.roundsFull
}

// RoundsPartial returns the number of partial rounds for a permutation of width t
func (pp *PoseidonParameters) RoundsPartial(width int) (int, error) {
	if width < 2 || width-2 >= len(pp.roundsPartial) {
		return 0, fmt.Errorf("no partial-round count for width %d", width)
	}
	return pp.roundsPartial[width-2], nil
}

// SboxPower returns the S-box exponent
func (pp *PoseidonParameters) SboxPower() int {
	return pp.sboxPower
}

// MaxRate returns the largest number of words one permutation absorbs
func (pp *PoseidonParameters) MaxRate() int {
	return len(pp.roundsPartial)
}

// Validate checks that the parameters match the tables compiled into the backend.
// A mismatch would produce commitments the circuit rejects.
func (pp *PoseidonParameters) Validate() error {
	if pp.fieldModulus == nil || pp.fieldModulus.Cmp(fieldModulus) != 0 {
		return fmt.Errorf("field modulus does not match the BN254 scalar field")
	}
	if pp.sboxPower != 5 {
		return fmt.Errorf("S-box power must be 5, got %d", pp.sboxPower)
	}
	if pp.roundsFull != poseidon.NROUNDSF {
		return fmt.Errorf("full rounds (%d) must equal backend full rounds (%d)", pp.roundsFull, poseidon.NROUNDSF)
	}
	if len(pp.roundsPartial) != len(poseidon.NROUNDSP) {
		return fmt.Errorf("partial-round schedule covers %d widths, backend covers %d",
			len(pp.roundsPartial), len(poseidon.NROUNDSP))
	}
	for i, rp := range pp.roundsPartial {
		if rp != poseidon.NROUNDSP[i] {
			return fmt.Errorf("partial rounds for width %d: %d, backend uses %d", i+2, rp, poseidon.NROUNDSP[i])
		}
	}
	return nil
}

// PoseidonHash implements the Poseidon hash over arbitrary-length sequences.
//
// Sequences of 1..MaxRate elements are hashed with a single permutation of
// width n+1 and a zero capacity word, which is exactly circomlib Poseidon(n).
//
// Every other length (the empty sequence and sequences longer than MaxRate)
// goes through a length-tagged sponge over the same permutations. The
// capacity word is seeded with n+1, which is never zero, so the two modes
// cannot be confused. The first block absorbs up to MaxRate elements, each
// later block absorbs the running digest followed by up to MaxRate-1 fresh
// elements. The empty sequence absorbs a single zero word.
type PoseidonHash struct {
	params *PoseidonParameters
}

// NewPoseidonHash creates a new Poseidon hash instance
func NewPoseidonHash(params *PoseidonParameters) (*PoseidonHash, error) {
	if params == nil {
		params = DefaultPoseidonParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poseidon parameters: %w", err)
	}
	return &PoseidonHash{params: params}, nil
}

// Parameters returns the parameter set this hash was built with
func (p *PoseidonHash) Parameters() *PoseidonParameters {
	return p.params
}

// Hash computes the Poseidon hash of a sequence of any length
func (p *PoseidonHash) Hash(inputs []FieldElement) (FieldElement, error) {
	n := len(inputs)
	if n >= 1 && n <= p.params.MaxRate() {
		return p.Permute(inputs, Zero())
	}
	return p.sponge(inputs)
}

// Permute runs one permutation of width len(inputs)+1 with the given capacity
// word and returns the first state word.
func (p *PoseidonHash) Permute(inputs []FieldElement, capacity FieldElement) (FieldElement, error) {
	if len(inputs) == 0 || len(inputs) > p.params.MaxRate() {
		return FieldElement{}, fmt.Errorf("%w: permutation absorbs 1..%d words, got %d",
			ErrInvalidInput, p.params.MaxRate(), len(inputs))
	}

	words := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		words[i] = in.Big()
	}
	initState := capacity.Big()
	if !utils.CheckBigIntInField(initState) {
		return FieldElement{}, fmt.Errorf("%w: capacity word", ErrFieldRange)
	}

	out, err := poseidon.HashWithState(words, initState)
	if err != nil {
		return FieldElement{}, fmt.Errorf("%w: %v", ErrFieldRange, err)
	}
	if err := CheckRange(out); err != nil {
		return FieldElement{}, err
	}
	return Lift(out)
}

// sponge absorbs a sequence block by block under a length tag
func (p *PoseidonHash) sponge(inputs []FieldElement) (FieldElement, error) {
	rate := p.params.MaxRate()
	tag := LiftUint64(uint64(len(inputs)) + 1)

	if len(inputs) == 0 {
		return p.Permute([]FieldElement{Zero()}, tag)
	}

	end := min(rate, len(inputs))
	digest, err := p.Permute(inputs[:end], tag)
	if err != nil {
		return FieldElement{}, fmt.Errorf("absorb block [0:%d]: %w", end, err)
	}

	for start := end; start < len(inputs); start = end {
		end = min(start+rate-1, len(inputs))
		block := make([]FieldElement, 0, end-start+1)
		block = append(block, digest)
		block = append(block, inputs[start:end]...)

		digest, err = p.Permute(block, tag)
		if err != nil {
			return FieldElement{}, fmt.Errorf("absorb block [%d:%d]: %w", start, end, err)
		}
	}

	return digest, nil
}
