// Package googlefonts resolves a font family to a downloadable TTF/OTF in the google/fonts
// repository on GitHub.
package googlefonts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase   = "https://api.github.com/repos/google/fonts/contents/ofl"
	defaultRawPrefix = "https://raw.githubusercontent.com/google/fonts/"
)

var ErrNotFound = errors.New("font not found on Google Fonts")

type githubFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client lists family folders through the GitHub contents API. Only download URLs under
// RawPrefix are returned.
type Client struct {
	HTTP      *http.Client
	APIBase   string
	RawPrefix string
}

func New() *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		APIBase:   defaultAPIBase,
		RawPrefix: defaultRawPrefix,
	}
}

// NormalizeFamily converts a display name to candidate folder names in google/fonts ofl,
// e.g. "Open Sans" -> "opensans", "open-sans".
func NormalizeFamily(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	noSpaces := strings.ReplaceAll(lower, " ", "")
	withHyphens := strings.ReplaceAll(lower, " ", "-")
	out := []string{noSpaces}
	if withHyphens != noSpaces {
		out = append(out, withHyphens)
	}
	return out
}

// DownloadURL returns the raw URL of a font file in folder, preferring an upright face.
func (c *Client) DownloadURL(ctx context.Context, folder string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/"+url.PathEscape(folder), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %q", ErrNotFound, folder)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google fonts: HTTP %d", resp.StatusCode)
	}
	var files []githubFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}

	var italic string
	for _, f := range files {
		lower := strings.ToLower(f.Name)
		if f.Type != "file" || !strings.HasPrefix(f.DownloadURL, c.RawPrefix) {
			continue
		}
		if !strings.HasSuffix(lower, ".ttf") && !strings.HasSuffix(lower, ".otf") {
			continue
		}
		if strings.Contains(lower, "italic") {
			if italic == "" {
				italic = f.DownloadURL
			}
			continue
		}
		return f.DownloadURL, nil
	}
	if italic != "" {
		return italic, nil
	}
	return "", fmt.Errorf("%w: no .ttf/.otf in %q", ErrNotFound, folder)
}

// DownloadURLByFamily tries each NormalizeFamily candidate and returns the first hit.
func (c *Client) DownloadURLByFamily(ctx context.Context, name string) (string, error) {
	candidates := NormalizeFamily(name)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: empty family name", ErrNotFound)
	}
	var lastErr error
	for _, folder := range candidates {
		u, err := c.DownloadURL(ctx, folder)
		if err == nil {
			return u, nil
		}
		lastErr = err
	}
	return "", lastErr
}
