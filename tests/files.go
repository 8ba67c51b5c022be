// Package tests locates, and downloads if needed, the blargg and mooneye
// test rom suites.
package tests

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// A Suite is a test rom archive.
type Suite struct {
	Name string // directory name under the tests directory
	URL  string // zip archive
}

var (
	Blargg  = Suite{Name: "blargg", URL: `https://github.com/retrio/gb-test-roms/archive/refs/heads/master.zip`}
	Mooneye = Suite{Name: "mooneye", URL: `https://github.com/c-sp/game-boy-test-roms/releases/download/v7.0/game-boy-test-roms-v7.0.zip`}

	suites = []Suite{Blargg, Mooneye}
)

func decompress(zipFile, dest string) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("%s: illegal file path", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)

		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}

	log.Println("decompressed", len(r.File), "files")
	return nil
}

// download fetches the suite archive and extracts it in dest.
func (s Suite) download(dest string) error {
	resp, err := http.Get(s.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", s.URL, resp.Status)
	}

	tmpf, err := os.CreateTemp("", s.Name+"-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpf.Name())
	defer tmpf.Close()

	if _, err := io.Copy(tmpf, resp.Body); err != nil {
		return err
	}

	// Extract in a temporary directory first, so that an interrupted
	// download isn't mistaken for a complete suite.
	tmpdir, err := os.MkdirTemp(filepath.Dir(dest), s.Name+".*")
	if err != nil {
		return err
	}
	if err := decompress(tmpf.Name(), tmpdir); err != nil {
		os.RemoveAll(tmpdir)
		return fmt.Errorf("failed to decompress %s: %w", s.Name, err)
	}
	return os.Rename(tmpdir, dest)
}

func testsDir() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Dir(b)
}

var romsPath = sync.OnceValues(func() (string, error) {
	dir := testsDir()

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, s := range suites {
		dest := filepath.Join(dir, s.Name)
		if _, err := os.Stat(dest); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		g.Go(func() error {
			log.Printf("%s test roms not found, downloading them...", s.Name)
			if err := s.download(dest); err != nil {
				return err
			}
			log.Printf("%s test roms downloaded in %s", s.Name, dest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return dir, nil
})

// RomsPath returns the directory holding all test rom suites, downloading
// the missing ones concurrently.
func RomsPath(tb testing.TB) string {
	tb.Helper()

	dir, err := romsPath()
	if err != nil {
		tb.Fatalf("failed to download test roms: %s", err)
	}
	return dir
}

// Find returns the path of the rom of the given suite whose path ends with
// name (slash-separated). The test is skipped if there is no such rom.
func (s Suite) Find(tb testing.TB, name string) string {
	tb.Helper()

	root := filepath.Join(RomsPath(tb), s.Name)
	suffix := "/" + name

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(filepath.ToSlash(path), suffix) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		tb.Fatal(err)
	}
	if found == "" {
		tb.Skipf("%s: %s not found", s.Name, name)
	}
	return found
}
