package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-offer-match/internal/app"
	"go-offer-match/internal/config"
	"go-offer-match/internal/repository/memory"
)

const catalogYAML = `products:
  - sku: X100
    name: Thermal Printer X100
    brand: Acme
    alt_skus: [X-100]
  - sku: PR-80
    name: Thermal Paper Roll
    brand: Acme
    pkg_size: 10
`

const offersJSON = `{"offers": [
  {"supplier": "Acme Supply", "supplier_sku": "X-100", "description": "Thermal printer"},
  {"supplier": "Acme Supply", "description": "Paper roll for thermal printers", "pack": 10},
  {"supplier": "Acme Supply", "description": ""}
]}`

// sharedRuntime hands every command the same memory store.
func sharedRuntime(t *testing.T) opener {
	t.Helper()
	cfg := &config.Config{
		StoreDriver:   "memory",
		IngestWorkers: 2,
		Match: config.MatchConfig{
			AutoApproveThreshold: 0.88,
			TopN:                 3,
			PrimaryWeight:        1.0,
			AlternateWeight:      0.95,
			SimilarityWeight:     0.8,
			BrandWeight:          0.1,
			PackSizeWeight:       0.05,
			ScoreCap:             1.2,
		},
	}
	services := app.NewServices(cfg, memory.New(), app.Options{}, zap.NewNop())
	require.NoError(t, services.Auth.EnsureAdmin(context.Background(), "admin@example.com", "admin123"))

	return func(string) (*runtime, error) {
		return &runtime{services: services, log: zap.NewNop(), close: func() error { return nil }}, nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndIngest(t *testing.T) {
	open := sharedRuntime(t)
	catalog := writeFile(t, "catalog.yaml", catalogYAML)

	out, err := run(t, open, "seed", catalog)
	require.NoError(t, err)
	assert.Equal(t, "created 2, skipped 0\n", out)

	out, err = run(t, open, "seed", catalog)
	require.NoError(t, err)
	assert.Equal(t, "created 0, skipped 2\n", out)

	out, err = run(t, open, "ingest", writeFile(t, "offers.json", offersJSON))
	require.NoError(t, err)
	assert.Contains(t, out, "#2 failed")
	assert.Contains(t, out, "matched 1, needs review 1, unmatched 0, failed 1")
}

func TestResetPassword(t *testing.T) {
	open := sharedRuntime(t)

	_, err := run(t, open, "reset-password", "admin@example.com")
	assert.Error(t, err, "password flag is required")

	out, err := run(t, open, "reset-password", "admin@example.com", "--password", "changed1")
	require.NoError(t, err)
	assert.Contains(t, out, "has been reset")

	_, err = run(t, open, "reset-password", "nobody@example.com", "--password", "changed1")
	assert.Error(t, err)
}

func TestReadFiles(t *testing.T) {
	_, err := readSeedFile(writeFile(t, "empty.yaml", "products: []\n"))
	assert.Error(t, err)

	records, err := readOfferFile(writeFile(t, "bare.json", `[{"description": "Thermal printer"}]`))
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = readOfferFile(writeFile(t, "bad.json", `{"offers": 3}`))
	assert.Error(t, err)
}
