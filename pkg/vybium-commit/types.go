package vybiumcommit

import (
	"github.com/vybium/vybium-commit/internal/vybium-commit/core"
	"github.com/vybium/vybium-commit/internal/vybium-commit/protocols"
	"github.com/vybium/vybium-commit/internal/vybium-commit/utils"
)

// FieldElement represents an element of the BN254 scalar field
type FieldElement = core.FieldElement

// InputRecord represents the payload produced by the data preparation stage
type InputRecord = protocols.InputRecord

// OutputRecord represents the circuit input record written by Run
type OutputRecord = protocols.OutputRecord

// Config represents configuration for the commitment pipeline
type Config = utils.Config

// PrepareConfig represents configuration for the regression preparation stage
type PrepareConfig = utils.PrepareConfig

// Result represents the outcome of a successful Run
type Result struct {
	// Commitment in base 10, as written to data_commitment
	DataCommitment string

	// Sub-digests H(X) and H(Y) in base 10
	XDigest string
	YDigest string

	// Number of elements committed per sequence
	XLen int
	YLen int

	// Hex SHA3-256 of the bytes written to the output file
	RecordDigest string
}

// PrepareResult represents the outcome of a successful Prepare
type PrepareResult struct {
	// Least-squares fit before quantization
	Slope     float64
	Intercept float64

	// Quantized model and threshold in base 10
	M         string
	C         string
	Threshold string

	// Integer SSE of the quantized model
	SSE string

	// Hex SHA3-256 of the bytes written to the output file
	RecordDigest string
}

// DefaultConfig returns a default pipeline configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads a YAML configuration file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	cfg, err := utils.LoadConfig(path)
	if err != nil {
		return nil, classify("failed to load configuration", err)
	}
	return cfg, nil
}
