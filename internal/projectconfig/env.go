package projectconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotEnv loads .env from each directory in order. Variables that are
// already set are kept, so earlier files take precedence over later ones.
func loadDotEnv(dirs ...string) error {
	seen := map[string]bool{}
	for _, dir := range dirs {
		p := filepath.Join(dir, ".env")
		if seen[p] {
			continue
		}
		seen[p] = true

		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
		slog.Debug("Loaded environment file", "path", p)
	}
	return nil
}
