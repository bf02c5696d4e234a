package protocols

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/vybium/vybium-commit/internal/vybium-commit/core"
)

var (
	// ErrMalformedInput is returned when a payload is not a valid record
	ErrMalformedInput = errors.New("malformed input")

	// ErrCommitmentMismatch is returned when a record's data_commitment does not match its data
	ErrCommitmentMismatch = errors.New("data commitment mismatch")
)

// Scalars are the model parameters carried through the pipeline.
// They are re-serialized but never hashed.
type Scalars struct {
	M         Scalar
	C         Scalar
	Threshold Scalar
}

func (s Scalars) complete() bool {
	return s.M.IsSet() && s.C.IsSet() && s.Threshold.IsSet()
}

// InputRecord is the payload produced by the data preparation stage
type InputRecord struct {
	X []*big.Int
	Y []*big.Int
	Scalars
}

// OutputRecord is the circuit input: the original data plus its commitment,
// every number as exact decimal text.
type OutputRecord struct {
	X              []string `json:"x"`
	Y              []string `json:"y"`
	M              string   `json:"m"`
	C              string   `json:"c"`
	Threshold      string   `json:"threshold"`
	DataCommitment string   `json:"data_commitment"`
}

// rawInput keeps every field undecoded so missing keys can be told apart
type rawInput struct {
	X         json.RawMessage `json:"x"`
	Y         json.RawMessage `json:"y"`
	M         json.RawMessage `json:"m"`
	C         json.RawMessage `json:"c"`
	Threshold json.RawMessage `json:"threshold"`
}

// DecodeInput parses an input record.
//
// Sequence elements must be non-negative integers, given as JSON numbers or
// as decimal strings. Scalars may be any decimal number, negative or fractional.
func DecodeInput(r io.Reader) (*InputRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", ErrMalformedInput, err)
	}

	var raw rawInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	x, err := decodeSequence("x", raw.X)
	if err != nil {
		return nil, err
	}
	y, err := decodeSequence("y", raw.Y)
	if err != nil {
		return nil, err
	}

	record := &InputRecord{X: x, Y: y}
	if record.M, err = decodeScalar("m", raw.M); err != nil {
		return nil, err
	}
	if record.C, err = decodeScalar("c", raw.C); err != nil {
		return nil, err
	}
	if record.Threshold, err = decodeScalar("threshold", raw.Threshold); err != nil {
		return nil, err
	}

	return record, nil
}

func decodeSequence(name string, raw json.RawMessage) ([]*big.Int, error) {
	if isAbsent(raw) {
		return nil, fmt.Errorf("%w: missing required field %q", ErrMalformedInput, name)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: field %q must be an array: %v", ErrMalformedInput, name, err)
	}

	values := make([]*big.Int, len(elems))
	for i, elem := range elems {
		v, err := decodeInteger(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedInput, name, i, err)
		}
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s[%d]: negative value %s", ErrMalformedInput, name, i, v.String())
		}
		values[i] = v
	}
	return values, nil
}

func decodeScalar(name string, raw json.RawMessage) (Scalar, error) {
	if isAbsent(raw) {
		return Scalar{}, fmt.Errorf("%w: missing required field %q", ErrMalformedInput, name)
	}
	text, err := numberText(raw)
	if err != nil {
		return Scalar{}, fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
	}
	s, err := ParseScalar(text)
	if err != nil {
		return Scalar{}, fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
	}
	return s, nil
}

// numberText returns the text of a JSON number or of a JSON string
func numberText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", err
		}
		return text, nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return "", fmt.Errorf("not a number: %s", string(trimmed))
	}
	return num.String(), nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeInteger accepts a JSON number with an integral value (1, 3.0, 1e3)
// or a string holding a base-10 integer.
func decodeInteger(raw json.RawMessage) (*big.Int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(strings.TrimSpace(text), 10)
		if !ok {
			return nil, fmt.Errorf("%q is not a decimal integer", text)
		}
		return v, nil
	}

	text, err := numberText(trimmed)
	if err != nil {
		return nil, err
	}
	s, err := ParseScalar(text)
	if err != nil {
		return nil, err
	}
	v, ok := s.Int()
	if !ok {
		return nil, fmt.Errorf("%s is not an integer", text)
	}
	return v, nil
}

// Serialize renders scalars, sequences and commitment as an output record
func Serialize(scalars Scalars, x, y []core.FieldElement, commitment *Commitment) (*OutputRecord, error) {
	if commitment == nil {
		return nil, fmt.Errorf("%w: nil commitment", ErrMalformedInput)
	}
	if !scalars.complete() {
		return nil, fmt.Errorf("%w: scalar parameters incomplete", ErrMalformedInput)
	}

	xs, err := renderSequence("x", x)
	if err != nil {
		return nil, err
	}
	ys, err := renderSequence("y", y)
	if err != nil {
		return nil, err
	}
	if err := core.CheckRange(commitment.Value.Big()); err != nil {
		return nil, fmt.Errorf("data_commitment: %w", err)
	}

	return &OutputRecord{
		X:              xs,
		Y:              ys,
		M:              scalars.M.String(),
		C:              scalars.C.String(),
		Threshold:      scalars.Threshold.String(),
		DataCommitment: commitment.String(),
	}, nil
}

func renderSequence(name string, elems []core.FieldElement) ([]string, error) {
	for i, e := range elems {
		if err := core.CheckRange(e.Big()); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
	}
	return core.ToDecimalStrings(elems), nil
}

// EncodeOutput writes the record as JSON, indented by indent spaces (0 for compact)
func EncodeOutput(w io.Writer, record *OutputRecord, indent int) error {
	return writeJSON(w, record, indent)
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// inputDocument is the wire form of an input record, in the field order the
// preparation stage writes.
type inputDocument struct {
	X         []string `json:"x"`
	Y         []string `json:"y"`
	M         string   `json:"m"`
	C         string   `json:"c"`
	Threshold string   `json:"threshold"`
}

// EncodeInput writes an input record with every number as decimal text
func EncodeInput(w io.Writer, record *InputRecord, indent int) error {
	if !record.complete() {
		return fmt.Errorf("%w: scalar parameters incomplete", ErrMalformedInput)
	}
	doc := inputDocument{
		X:         bigStrings(record.X),
		Y:         bigStrings(record.Y),
		M:         record.M.String(),
		C:         record.C.String(),
		Threshold: record.Threshold.String(),
	}
	return writeJSON(w, doc, indent)
}

func bigStrings(values []*big.Int) []string {
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = v.String()
	}
	return result
}

// DecodeOutput parses a previously written output record
func DecodeOutput(r io.Reader) (*OutputRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", ErrMalformedInput, err)
	}

	var record OutputRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if record.X == nil || record.Y == nil || record.DataCommitment == "" {
		return nil, fmt.Errorf("%w: output record needs x, y and data_commitment", ErrMalformedInput)
	}
	return &record, nil
}

// Verify recomputes the commitment of an output record and compares it with data_commitment
func (r *OutputRecord) Verify(committer *Committer) (*Commitment, error) {
	x, err := parseSequence("x", r.X)
	if err != nil {
		return nil, err
	}
	y, err := parseSequence("y", r.Y)
	if err != nil {
		return nil, err
	}

	commitment, err := committer.Commit(x, y)
	if err != nil {
		return nil, err
	}
	if commitment.String() != r.DataCommitment {
		return nil, fmt.Errorf("%w: record has %s, data hashes to %s",
			ErrCommitmentMismatch, r.DataCommitment, commitment.String())
	}
	return commitment, nil
}

func parseSequence(name string, texts []string) ([]core.FieldElement, error) {
	elems := make([]core.FieldElement, len(texts))
	for i, text := range texts {
		fe, err := core.ParseDecimal(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedInput, name, i, err)
		}
		elems[i] = fe
	}
	return elems, nil
}
