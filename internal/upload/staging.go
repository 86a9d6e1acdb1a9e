// Package upload stages uploaded files for the extraction pipeline.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxUploadBytes caps staged uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// Save writes the upload to a unique file under dir (os.TempDir when empty)
// and returns its path. The extraction pipeline owns deletion of the staged
// file; callers only clean up when submission fails before enqueue.
func Save(dir, filename string, r io.Reader) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	ext := filepath.Ext(filename)
	f, err := os.CreateTemp(dir, "paperdigest-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if n > maxUploadBytes {
		os.Remove(f.Name())
		return "", fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}

	return f.Name(), nil
}
