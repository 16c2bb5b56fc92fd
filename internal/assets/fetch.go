package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fxdemo/internal/archive"
	"fxdemo/internal/download"
)

// Fetch makes sure path exists locally. When it is missing and url is set, url is downloaded
// into path's directory. A zip bundle is extracted there and its file with path's extension is
// used: renamed to path when it sits beside it, returned as is when nested. The returned path is
// the one to decode. With no url a missing path is returned unchanged for the decoder to report.
func Fetch(ctx context.Context, client *http.Client, path, url string) (string, error) {
	if _, err := os.Stat(path); err == nil || url == "" {
		return path, nil
	}
	dir := filepath.Dir(path)
	tmp, err := os.MkdirTemp(dir, ".fetch-")
	if errors.Is(err, os.ErrNotExist) {
		if err = os.MkdirAll(dir, 0755); err == nil {
			tmp, err = os.MkdirTemp(dir, ".fetch-")
		}
	}
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer os.RemoveAll(tmp)

	saved, err := download.Download(ctx, client, url, tmp)
	if err != nil {
		return "", err
	}
	want := strings.ToLower(filepath.Ext(path))
	if strings.ToLower(filepath.Ext(saved)) == ".zip" && want != ".zip" {
		files, err := archive.Unzip(saved, dir)
		if err != nil {
			return "", err
		}
		picked, err := archive.Pick(files, want)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", url, err)
		}
		if filepath.Dir(picked) != mustAbs(dir) {
			return picked, nil
		}
		saved = picked
	}
	if err := os.Rename(saved, path); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return path, nil
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
