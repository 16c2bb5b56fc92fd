// Package archive unpacks downloaded asset bundles.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoMatch = errors.New("no matching file in archive")

// Unzip extracts zipPath into destDir, preserving directory structure. Entries that would land
// outside destDir are skipped. Returns the extracted file paths.
func Unzip(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}

	var extracted []string
	for _, f := range r.File {
		dest := filepath.Join(absDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dest, absDir+string(os.PathSeparator)) {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return nil, fmt.Errorf("unzip: %w", err)
			}
			continue
		}
		if err := extract(f, dest); err != nil {
			return nil, fmt.Errorf("unzip %s: %w", f.Name, err)
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extract(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Pick returns the file in paths whose extension is ext (case-insensitive). With several
// candidates, the shallowest path wins, then the first in archive order.
func Pick(paths []string, ext string) (string, error) {
	ext = strings.ToLower(ext)
	best, depth := "", -1
	for _, p := range paths {
		if strings.ToLower(filepath.Ext(p)) != ext {
			continue
		}
		d := strings.Count(filepath.ToSlash(p), "/")
		if depth < 0 || d < depth {
			best, depth = p, d
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: want %s", ErrNoMatch, ext)
	}
	return best, nil
}
