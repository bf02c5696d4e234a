package protocols

import (
	"fmt"
	"math/big"

	"github.com/vybium/vybium-commit/internal/vybium-commit/core"
)

// Commitment binds two sequences X and Y.
//
// Value = H([H(X), H(Y)]). The sub-digests are kept so callers can log them
// or check each sequence independently.
type Commitment struct {
	Value   core.FieldElement
	XDigest core.FieldElement
	YDigest core.FieldElement
}

// String returns the commitment value in base 10
func (c *Commitment) String() string {
	return c.Value.String()
}

// Committer builds data commitments with a field-friendly hash
type Committer struct {
	hash core.FieldFriendlyHash
}

// NewCommitter creates a committer over the given hash
func NewCommitter(hash core.FieldFriendlyHash) *Committer {
	return &Committer{hash: hash}
}

// Commit computes H([H(x), H(y)]).
// The pair is hashed in (x, y) order and is never normalized.
func (c *Committer) Commit(x, y []core.FieldElement) (*Commitment, error) {
	hx, err := c.hash.Hash(x)
	if err != nil {
		return nil, fmt.Errorf("hash x: %w", err)
	}

	hy, err := c.hash.Hash(y)
	if err != nil {
		return nil, fmt.Errorf("hash y: %w", err)
	}

	value, err := c.hash.Hash([]core.FieldElement{hx, hy})
	if err != nil {
		return nil, fmt.Errorf("hash digest pair: %w", err)
	}

	return &Commitment{
		Value:   value,
		XDigest: hx,
		YDigest: hy,
	}, nil
}

// CommitIntegers lifts both integer sequences into the field and commits to them
func (c *Committer) CommitIntegers(x, y []*big.Int) (*Commitment, error) {
	fx, err := core.LiftAll(x)
	if err != nil {
		return nil, fmt.Errorf("lift x: %w", err)
	}
	fy, err := core.LiftAll(y)
	if err != nil {
		return nil, fmt.Errorf("lift y: %w", err)
	}
	return c.Commit(fx, fy)
}
