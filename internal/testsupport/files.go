package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"cinelake/internal/config"
)

// DefaultContractsYAML declares the two providers most tests exercise.
const DefaultContractsYAML = `
providers:
  - provider: imdb
    fields:
      - name: title
        type: string
        required: true
      - name: year
        type: int
        required: true
      - name: rating
        type: float
  - provider: boxofficemetrics
    fields:
      - name: title
        type: string
        required: true
      - name: year
        type: int
        required: true
      - name: domestic_box_office_gross
        type: float
      - name: international_box_office_gross
        type: float
`

// DefaultMappingsYAML projects the providers' raw fields onto the contracts.
const DefaultMappingsYAML = `
providers:
  - provider: imdb
    fields:
      - source: title
        target: title
        transforms: [trim, collapse_ws]
      - source: year
        target: year
      - source: rating
        target: rating
  - provider: boxofficemetrics
    fields:
      - source: movie_title
        target: title
        transforms: [trim, collapse_ws]
      - source: release_year
        target: year
      - source: domestic_gross
        target: domestic_box_office_gross
      - source: international_gross
        target: international_box_office_gross
`

// WriteSourceDocs writes contract and mapping sources to the paths the
// config points at.
func WriteSourceDocs(t testing.TB, cfg *config.Config, contractsYAML, mappingsYAML string) {
	t.Helper()
	if err := os.WriteFile(cfg.Sources.ContractsFile, []byte(contractsYAML), 0o644); err != nil {
		t.Fatalf("write contracts source: %v", err)
	}
	if err := os.WriteFile(cfg.Sources.MappingsFile, []byte(mappingsYAML), 0o644); err != nil {
		t.Fatalf("write mappings source: %v", err)
	}
}

// WriteDefaultSourceDocs writes the standard two-provider fixtures.
func WriteDefaultSourceDocs(t testing.TB, cfg *config.Config) {
	t.Helper()
	WriteSourceDocs(t, cfg, DefaultContractsYAML, DefaultMappingsYAML)
}

// WriteBatch lands a batch directory with the given data files and,
// when ready is true, the readiness marker. Returns the batch directory.
func WriteBatch(t testing.TB, cfg *config.Config, provider, batchID string, files map[string]string, ready bool) string {
	t.Helper()

	dir := filepath.Join(cfg.Paths.IncomingDir, provider, batchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create batch dir: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write batch file %s: %v", name, err)
		}
	}
	if ready {
		MarkReady(t, cfg, provider, batchID)
	}
	return dir
}

// MarkReady drops the readiness marker into an existing batch directory.
func MarkReady(t testing.TB, cfg *config.Config, provider, batchID string) {
	t.Helper()
	marker := filepath.Join(cfg.Paths.IncomingDir, provider, batchID, cfg.Ingest.ReadyMarker)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		t.Fatalf("write ready marker: %v", err)
	}
}
