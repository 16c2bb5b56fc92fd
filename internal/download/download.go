// Package download fetches remote assets (environment maps, models, fonts, zip bundles) to disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const userAgent = "fxdemo/1.0 (+asset fetch)"

var ErrStatus = errors.New("unexpected HTTP status")

// DefaultClient is used when Download is given a nil client.
var DefaultClient = &http.Client{Timeout: 2 * time.Minute}

// Download fetches url and saves it under destDir. The file name comes from Content-Disposition,
// then the URL path; the extension from the URL, then Content-Type. The body is written to a
// temporary file and renamed into place, so an interrupted fetch leaves nothing behind.
// Returns the saved path.
func Download(ctx context.Context, client *http.Client, url, destDir string) (string, error) {
	if client == nil {
		client = DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %w %d", url, ErrStatus, resp.StatusCode)
	}

	name := filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filenameFromURL(url)
	}
	name = sanitizeFilename(name)
	if filepath.Ext(name) == "" {
		ext := extensionFromURL(url)
		if ext == "" {
			ext = extensionFromContentType(resp.Header.Get("Content-Type"))
		}
		if ext == "" {
			ext = ".bin"
		}
		name += ext
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	_, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	saved := filepath.Join(destDir, name)
	if err := os.Rename(tmp.Name(), saved); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	return saved, nil
}

func filenameFromContentDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return path.Base(params["filename"])
}

// known maps lowercase extensions to themselves; anything else in a URL is ignored.
var known = map[string]bool{
	".zip": true, ".hdr": true, ".exr": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gltf": true, ".glb": true, ".bin": true, ".obj": true, ".ttf": true, ".otf": true,
}

func extensionFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch {
	case strings.Contains(mt, "zip"):
		return ".zip"
	case mt == "font/otf":
		return ".otf"
	case strings.Contains(mt, "font"), strings.Contains(mt, "ttf"):
		return ".ttf"
	case mt == "image/png":
		return ".png"
	case mt == "image/jpeg":
		return ".jpg"
	case mt == "image/vnd.radiance":
		return ".hdr"
	case mt == "model/gltf+json":
		return ".gltf"
	case mt == "model/gltf-binary":
		return ".glb"
	}
	return ""
}

func trimQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

func extensionFromURL(url string) string {
	ext := strings.ToLower(path.Ext(trimQuery(url)))
	if known[ext] {
		return ext
	}
	return ""
}

func filenameFromURL(url string) string {
	base := path.Base(trimQuery(url))
	if base == "." || base == "/" {
		return ""
	}
	if !known[strings.ToLower(path.Ext(base))] {
		base = strings.TrimSuffix(base, path.Ext(base))
	}
	return base
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	name = safeNameRe.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "download"
	}
	if len(name) > 96 {
		ext := filepath.Ext(name)
		name = name[:96-len(ext)] + ext
	}
	return name
}
