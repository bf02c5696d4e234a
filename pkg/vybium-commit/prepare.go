package vybiumcommit

import (
	"bytes"
	"log/slog"

	"github.com/vybium/vybium-commit/internal/vybium-commit/protocols"
	"github.com/vybium/vybium-commit/internal/vybium-commit/utils"
)

// Prepare fits a line to the raw data in cfg.Prepare, quantizes the model and
// data, derives the acceptance threshold and writes the input record to
// cfg.InputPath, ready for Run.
func Prepare(cfg *Config, logger *slog.Logger) (*PrepareResult, error) {
	if logger == nil {
		logger = discardLogger()
	}
	if cfg == nil {
		return nil, &CommitError{Code: ErrInvalidConfig, Message: "nil configuration"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, classify("invalid configuration", err)
	}
	if err := cfg.Prepare.Validate(); err != nil {
		return nil, classify("invalid prepare configuration", err)
	}

	p := cfg.Prepare
	prepared, err := protocols.PrepareInput(p.X, p.Y, p.Scale, p.ThresholdBuffer)
	if err != nil {
		return nil, classify("failed to prepare input record", err)
	}

	logger.Debug("Model fitted",
		"slope", prepared.Fit.Slope,
		"intercept", prepared.Fit.Intercept,
		"scale", p.Scale)

	var buf bytes.Buffer
	if err := protocols.EncodeInput(&buf, prepared.Record, cfg.Indent); err != nil {
		return nil, classify("failed to encode input record", err)
	}
	if err := utils.WriteFileAtomic(cfg.InputPath, buf.Bytes()); err != nil {
		return nil, classify("failed to write input record", err)
	}

	result := &PrepareResult{
		Slope:        prepared.Fit.Slope,
		Intercept:    prepared.Fit.Intercept,
		M:            prepared.Record.M.String(),
		C:            prepared.Record.C.String(),
		Threshold:    prepared.Record.Threshold.String(),
		SSE:          prepared.SSE.String(),
		RecordDigest: utils.Digest(buf.Bytes()),
	}

	logger.Info("Input record written",
		"output", cfg.InputPath,
		"m", result.M,
		"c", result.C,
		"sse", result.SSE,
		"threshold", result.Threshold)

	return result, nil
}
