package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mocat/internal/textutil"

	"github.com/rs/zerolog/log"
)

// FileEntry represents a discovered catalog file ready for decoding.
type FileEntry struct {
	Path   string
	Locale string
}

// Walk discovers all .mo files under the given root directory.
func Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			return nil
		}

		if strings.ToLower(filepath.Ext(path)) != ".mo" {
			return nil
		}

		entries = append(entries, FileEntry{
			Path:   path,
			Locale: textutil.Locale(path),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered catalog files")
	return entries, nil
}
