package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
)

// WriteFile writes the framed state to path, brotli-compressed.
func WriteFile(path string, s *State) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := brotli.NewWriterLevel(f, brotli.DefaultCompression)
	if _, err := w.Write(s.Encode()); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: compress %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads and validates a state written by WriteFile.
func ReadFile(path string) (*State, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(brotli.NewReader(bytes.NewReader(buf)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress %s: %w", path, err)
	}
	return Decode(data)
}
