package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	vybiumcommit "github.com/vybium/vybium-commit/pkg/vybium-commit"
)

// Test03_PrepareCommitVerify tests the full preparation flow:
// 1. Fit and quantize the reference dataset
// 2. Commit to the prepared record
// 3. Verify the output record
// 4. Tamper with the output and verify again
func Test03_PrepareCommitVerify(t *testing.T) {
	t.Log("=== Test 03: Prepare -> Commit -> Verify ===")

	dir := t.TempDir()
	cfg := vybiumcommit.DefaultConfig().
		WithInputPath(filepath.Join(dir, "temp_data.json")).
		WithOutputPath(filepath.Join(dir, "input.json"))

	t.Log("Step 1: Preparing input record...")
	prepared, err := vybiumcommit.Prepare(cfg, nil)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	t.Logf("  - Fit: y = %.4fx + %.4f", prepared.Slope, prepared.Intercept)
	t.Logf("  - m=%s c=%s SSE=%s threshold=%s", prepared.M, prepared.C, prepared.SSE, prepared.Threshold)

	t.Log("Step 2: Committing...")
	result, err := vybiumcommit.RunWithConfig(cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	t.Log("Step 3: Verifying...")
	verified, err := vybiumcommit.Verify(cfg.OutputPath)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verified.DataCommitment != result.DataCommitment {
		t.Fatalf("Verify reported %s, Run wrote %s", verified.DataCommitment, result.DataCommitment)
	}

	t.Log("Step 4: Tampering with threshold and x...")
	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}

	// scalars are not bound by the commitment
	record["threshold"] = "1"
	rewrite(t, cfg.OutputPath, record)
	if _, err := vybiumcommit.Verify(cfg.OutputPath); err != nil {
		t.Fatalf("Changing threshold must not break the commitment: %v", err)
	}

	x := record["x"].([]any)
	x[0] = "2"
	rewrite(t, cfg.OutputPath, record)
	_, err = vybiumcommit.Verify(cfg.OutputPath)
	if vybiumcommit.CodeOf(err) != vybiumcommit.ErrMalformedInput {
		t.Fatalf("Tampered x must fail verification, got %v", err)
	}

	t.Log("✅ Prepare -> Commit -> Verify passed")
}

func rewrite(t *testing.T, path string, record map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		t.Fatalf("Failed to encode record: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write record: %v", err)
	}
}
