package file

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Load reads every path in order and returns the documents that were
// successfully read as strings, in the same order. A path that does not
// exist, cannot be read, or names a directory is logged at debug level and
// silently dropped rather than failing the call.
func Load(paths []string) []string {
	documents := make([]string, 0, len(paths))

	for _, path := range paths {
		data, ok := readOne(path)
		if !ok {
			continue
		}

		documents = append(documents, string(data))
	}

	return documents
}

func readOne(path string) ([]byte, bool) {
	cleanPath := filepath.Clean(path)

	stat, err := os.Stat(cleanPath)
	if err != nil {
		slog.Debug("skipping unreadable configuration file", slog.String("path", cleanPath), slog.Any("error", err))
		return nil, false
	}

	if stat.IsDir() {
		slog.Debug("skipping directory given as configuration file", slog.String("path", cleanPath))
		return nil, false
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- paths are operator-supplied configuration sources, not end-user input
	if err != nil {
		slog.Debug("skipping unreadable configuration file", slog.String("path", cleanPath), slog.Any("error", err))
		return nil, false
	}

	return data, true
}
