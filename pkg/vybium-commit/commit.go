package vybiumcommit

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/vybium/vybium-commit/internal/vybium-commit/core"
	"github.com/vybium/vybium-commit/internal/vybium-commit/protocols"
	"github.com/vybium/vybium-commit/internal/vybium-commit/utils"
)

// Run reads the input record at inputPath, commits to its sequences and
// writes the output record to outputPath. On any error no output file is left behind.
func Run(inputPath, outputPath string) error {
	cfg := DefaultConfig().WithInputPath(inputPath).WithOutputPath(outputPath)
	_, err := RunWithConfig(cfg, nil)
	return err
}

// RunWithConfig runs the commitment pipeline described by cfg.
// A nil logger discards log output.
func RunWithConfig(cfg *Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = discardLogger()
	}
	if cfg == nil {
		return nil, &CommitError{Code: ErrInvalidConfig, Message: "nil configuration"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, classify("invalid configuration", err)
	}

	committer, err := newCommitter()
	if err != nil {
		return nil, err
	}

	logger.Debug("Reading input record", "path", cfg.InputPath)
	data, err := utils.ReadFile(cfg.InputPath)
	if err != nil {
		return nil, classify("failed to read input record", err)
	}

	input, err := protocols.DecodeInput(bytes.NewReader(data))
	if err != nil {
		return nil, classify("failed to parse input record", err)
	}

	x, err := core.LiftAll(input.X)
	if err != nil {
		return nil, classify("failed to lift x into the field", err)
	}
	y, err := core.LiftAll(input.Y)
	if err != nil {
		return nil, classify("failed to lift y into the field", err)
	}

	logger.Debug("Hashing data", "xLen", len(x), "yLen", len(y))
	commitment, err := committer.Commit(x, y)
	if err != nil {
		return nil, classify("failed to compute data commitment", err)
	}

	record, err := protocols.Serialize(input.Scalars, x, y, commitment)
	if err != nil {
		return nil, classify("failed to serialize output record", err)
	}

	var buf bytes.Buffer
	if err := protocols.EncodeOutput(&buf, record, cfg.Indent); err != nil {
		return nil, classify("failed to encode output record", err)
	}
	if err := utils.WriteFileAtomic(cfg.OutputPath, buf.Bytes()); err != nil {
		return nil, classify("failed to write output record", err)
	}

	result := &Result{
		DataCommitment: commitment.String(),
		XDigest:        commitment.XDigest.String(),
		YDigest:        commitment.YDigest.String(),
		XLen:           len(x),
		YLen:           len(y),
		RecordDigest:   utils.Digest(buf.Bytes()),
	}

	logger.Info("Data commitment written",
		"output", cfg.OutputPath,
		"dataCommitment", result.DataCommitment,
		"recordDigest", result.RecordDigest)

	return result, nil
}

// Verify re-reads an output record and checks that data_commitment matches its x and y
func Verify(path string) (*Result, error) {
	committer, err := newCommitter()
	if err != nil {
		return nil, err
	}

	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, classify("failed to read output record", err)
	}

	record, err := protocols.DecodeOutput(bytes.NewReader(data))
	if err != nil {
		return nil, classify("failed to parse output record", err)
	}

	commitment, err := record.Verify(committer)
	if err != nil {
		return nil, classify("data commitment verification failed", err)
	}

	return &Result{
		DataCommitment: commitment.String(),
		XDigest:        commitment.XDigest.String(),
		YDigest:        commitment.YDigest.String(),
		XLen:           len(record.X),
		YLen:           len(record.Y),
		RecordDigest:   utils.Digest(data),
	}, nil
}

// Commit computes the data commitment of two sequences of field elements
func Commit(x, y []FieldElement) (FieldElement, error) {
	committer, err := newCommitter()
	if err != nil {
		return FieldElement{}, err
	}
	commitment, err := committer.Commit(x, y)
	if err != nil {
		return FieldElement{}, classify("failed to compute data commitment", err)
	}
	return commitment.Value, nil
}

func newCommitter() (*protocols.Committer, error) {
	hasher, err := core.NewPoseidonHash(core.DefaultPoseidonParameters())
	if err != nil {
		return nil, &CommitError{
			Code:    ErrInvalidConfig,
			Message: "failed to create poseidon hash",
			Cause:   err,
		}
	}
	return protocols.NewCommitter(hasher), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
