package googlefonts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient serves folders from a fake contents API. "{raw}" in a DownloadURL is replaced with
// the server's raw prefix.
func testClient(t *testing.T, folders map[string][]githubFile) *Client {
	t.Helper()
	var raw string
	mux := http.NewServeMux()
	mux.HandleFunc("/ofl/{folder}", func(w http.ResponseWriter, r *http.Request) {
		files, ok := folders[r.PathValue("folder")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		out := make([]githubFile, len(files))
		for i, f := range files {
			f.DownloadURL = strings.ReplaceAll(f.DownloadURL, "{raw}", raw)
			out[i] = f
		}
		json.NewEncoder(w).Encode(out)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	raw = srv.URL + "/raw/"
	return &Client{HTTP: srv.Client(), APIBase: srv.URL + "/ofl", RawPrefix: raw}
}

func TestNormalizeFamily(t *testing.T) {
	assert.Equal(t, []string{"inter"}, NormalizeFamily(" Inter "))
	assert.Equal(t, []string{"opensans", "open-sans"}, NormalizeFamily("Open Sans"))
	assert.Nil(t, NormalizeFamily(""))
}

func TestDownloadURLPrefersUpright(t *testing.T) {
	c := testClient(t, map[string][]githubFile{
		"inter": {
			{Name: "OFL.txt", Type: "file", DownloadURL: "{raw}OFL.txt"},
			{Name: "Inter-Italic.ttf", Type: "file", DownloadURL: "{raw}Inter-Italic.ttf"},
			{Name: "static", Type: "dir", DownloadURL: "{raw}static"},
			{Name: "Other.ttf", Type: "file", DownloadURL: "https://example.com/Other.ttf"},
			{Name: "Inter.ttf", Type: "file", DownloadURL: "{raw}Inter.ttf"},
		},
	})
	u, err := c.DownloadURL(context.Background(), "inter")
	require.NoError(t, err)
	assert.Equal(t, c.RawPrefix+"Inter.ttf", u)
}

func TestDownloadURLByFamilyFallsBack(t *testing.T) {
	c := testClient(t, map[string][]githubFile{
		"open-sans": {{Name: "OpenSans-Italic.ttf", Type: "file", DownloadURL: "{raw}OpenSans-Italic.ttf"}},
		"empty":     {{Name: "README.md", Type: "file", DownloadURL: "{raw}README.md"}},
	})
	u, err := c.DownloadURLByFamily(context.Background(), "Open Sans")
	require.NoError(t, err)
	assert.Equal(t, c.RawPrefix+"OpenSans-Italic.ttf", u)

	for _, name := range []string{"Nope", "Empty", "  "} {
		_, err = c.DownloadURLByFamily(context.Background(), name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}
