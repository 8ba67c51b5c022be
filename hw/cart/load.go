package cart

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

var errNoROM = errors.New("archive contains no .gb/.gbc file")

// ReadROM reads a rom file. Zip and 7z archives are decompressed, the first
// .gb or .gbc file they contain is returned.
func ReadROM(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		r, err := zip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return readFromArchive(path, zipFiles(r.File))
	case ".7z":
		r, err := sevenzip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return readFromArchive(path, sevenzipFiles(r.File))
	}
	return os.ReadFile(path)
}

// Open reads a rom file, possibly archived, and creates its cartridge.
func Open(path string) (Cartridge, error) {
	rom, err := ReadROM(path)
	if err != nil {
		return nil, err
	}
	c, err := New(rom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return c, nil
}

type archivedFile struct {
	name string
	open func() (io.ReadCloser, error)
}

func zipFiles(files []*zip.File) []archivedFile {
	var afs []archivedFile
	for _, f := range files {
		afs = append(afs, archivedFile{name: f.Name, open: f.Open})
	}
	return afs
}

func sevenzipFiles(files []*sevenzip.File) []archivedFile {
	var afs []archivedFile
	for _, f := range files {
		afs = append(afs, archivedFile{name: f.Name, open: f.Open})
	}
	return afs
}

func isROMName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gb", ".gbc":
		return true
	}
	return false
}

func readFromArchive(path string, files []archivedFile) ([]byte, error) {
	for _, f := range files {
		if !isROMName(f.name) {
			continue
		}
		rc, err := f.open()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, f.name, err)
		}
		defer rc.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, rc); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, f.name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, &fs.PathError{Op: "open", Path: path, Err: errNoROM}
}

// SavePath returns the battery save file path associated with a rom path.
func SavePath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".sav"
}
