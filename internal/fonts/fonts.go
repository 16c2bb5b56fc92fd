// Package fonts locates TTF/OTF files for the overlay text by family name.
package fonts

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"fxdemo/internal/download"
	"fxdemo/internal/googlefonts"
)

// Exts are the file extensions considered font files.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns candidate base directories for fonts, relative to the working directory.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf").
// Paths use forward slashes. A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalizeForMatch lowercases and removes spaces, dashes and underscores.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// Find resolves search to a font file under dirs. search may be an existing path, a family
// name like "Inter" or "Google Sans", or a partial file name. When several files match, one
// with "Regular" in its path wins.
func Find(dirs []string, search string) (string, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", os.ErrNotExist
	}
	if isFont(search) {
		if _, err := os.Stat(search); err == nil {
			return search, nil
		}
		search = strings.TrimSuffix(filepath.Base(search), filepath.Ext(search))
	}
	norm := normalizeForMatch(search)
	var matches []string
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if strings.Contains(normalizeForMatch(rel), norm) {
				matches = append(matches, filepath.Join(base, filepath.FromSlash(rel)))
			}
		}
	}
	if len(matches) == 0 {
		return "", os.ErrNotExist
	}
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m), "regular") {
			return m, nil
		}
	}
	return matches[0], nil
}

// Fetch downloads family from Google Fonts into destDir/<family> and returns the saved file.
func Fetch(ctx context.Context, gf *googlefonts.Client, family, destDir string) (string, error) {
	u, err := gf.DownloadURLByFamily(ctx, family)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(destDir, strings.ReplaceAll(strings.TrimSpace(family), " ", ""))
	return download.Download(ctx, gf.HTTP, u, dir)
}
