package records

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes recs to path in the answer-block layout.
//
// Missing parent directories are created. The content is written to a
// temporary file next to path and renamed over it, so a failed call leaves
// any previously saved file untouched.
func Save(recs []OutputRecord, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("records: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("records: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := Encode(tmp, recs); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("records: replace %s: %w", path, err)
	}
	return nil
}

// LoadAnswers reads an answers file previously written by Save.
func LoadAnswers(path string) ([]OutputRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("records: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
