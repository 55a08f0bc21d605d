package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_LivePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>My Post</title></head><body>hello</body></html>"))
	}))
	defer srv.Close()

	res, err := Probe(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.True(t, res.Live)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProbe_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res, err := Probe(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.False(t, res.Live)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, res.Detail, "404")
}

func TestProbe_MatchTextInTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>My Post</title></head><body>unrelated</body></html>"))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MatchText = "My Post"
	res, err := Probe(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.True(t, res.Live)
}

func TestProbe_MatchTextInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>the expected phrase appears here</p></body></html>"))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MatchText = "expected phrase"
	res, err := Probe(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.True(t, res.Live)
}

func TestProbe_MatchTextMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Wrong Page</title></head><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MatchText = "My Post"
	res, err := Probe(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.False(t, res.Live)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Detail, "does not contain")
}

func TestProbe_InvalidURL(t *testing.T) {
	res, err := Probe(context.Background(), "not a url", nil)
	assert.Nil(t, res)
	require.Error(t, err)
	var probeErr *Error
	assert.ErrorAs(t, err, &probeErr)
}

func TestProbe_UnreachableHostReportedInDetail(t *testing.T) {
	// Reserved TEST-NET address; nothing listens there.
	opts := DefaultOptions()
	opts.Timeout = 500 * time.Millisecond

	res, err := Probe(context.Background(), "http://192.0.2.1:9/", opts)
	require.NoError(t, err)
	assert.False(t, res.Live)
	assert.NotEmpty(t, res.Detail)
}

func TestProbe_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	_, err := Probe(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}
