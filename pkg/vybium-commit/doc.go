// Package vybiumcommit computes data commitments for zero-knowledge circuit inputs.
//
// A data commitment binds two integer sequences X and Y with the Poseidon hash
// over the BN254 scalar field:
//
//	data_commitment = Poseidon([Poseidon(X), Poseidon(Y)])
//
// The commitment is written next to the data and the model parameters in a
// record whose numbers are all exact decimal strings, the format the circuit's
// input parser expects.
//
// # Features
//
// - BN254 scalar field arithmetic with explicit lifting of arbitrary-precision integers
// - circomlib-compatible Poseidon for 1..16 inputs
// - Length-tagged Poseidon sponge for the empty sequence and for longer sequences
// - Atomic output: a failed run never leaves a partial file behind
// - Regression preparation stage that quantizes a least-squares fit for the circuit
//
// # Quick Start
//
// Committing to an input record:
//
//	if err := vybiumcommit.Run("temp_data.json", "input.json"); err != nil {
//		log.Fatal(err)
//	}
//
// The input file holds
//
//	{ "x": [1, 2, 3], "y": [4, 5], "m": 1, "c": 0, "threshold": 10 }
//
// and the output file
//
//	{ "x": ["1", "2", "3"], "y": ["4", "5"], "m": "1", "c": "0",
//	  "threshold": "10", "data_commitment": "<decimal>" }
//
// # Error Handling
//
// Every failure is a *CommitError carrying one ErrorCode:
//
//	err := vybiumcommit.Run(in, out)
//	switch vybiumcommit.CodeOf(err) {
//	case vybiumcommit.ErrNotFound:
//		// input missing or unreadable
//	case vybiumcommit.ErrMalformedInput:
//		// bad JSON, missing field or invalid element
//	case vybiumcommit.ErrWriteFailure:
//		// output could not be written
//	}
//
// # Architecture
//
// - pkg/vybium-commit/: Public API (this package)
// - internal/vybium-commit/core: field arithmetic and the Poseidon hash
// - internal/vybium-commit/protocols: commitment builder, record codec, regression preparation
// - internal/vybium-commit/utils: configuration and file IO
//
// # References
//
// - Poseidon paper: https://eprint.iacr.org/2019/458
// - circomlib Poseidon: https://github.com/iden3/circomlib
package vybiumcommit
