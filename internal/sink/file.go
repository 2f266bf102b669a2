// CLAUDE:SUMMARY Writes each artifact's content to <dir>/<filename>.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File writes artifacts into a directory under their export filename.
type File struct {
	dir string
}

// NewFile creates a File sink. The directory is created on first delivery.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) Deliver(_ context.Context, a Artifact) error {
	name := filepath.Base(a.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = a.ID + ".out"
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("file sink: mkdir: %w", err)
	}
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
		return fmt.Errorf("file sink: write: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
