package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagegrab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 4\ntimeout: 10s\nuser_agent: File/1.0\n"), 0o644))

	flags := CLIFlags{Config: path, Concurrency: 2}
	env := envOf(map[string]string{
		"IMAGEGRAB_CONCURRENCY": "6",
		"IMAGEGRAB_USER_AGENT":  "Env/1.0",
	})

	cfg, err := buildConfig(flags, env, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "Env/1.0", cfg.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Duration)
	assert.True(t, strings.HasPrefix(cfg.OutputDir, "images_"))
}

func TestBuildConfigRejectsNegativeConcurrency(t *testing.T) {
	_, err := buildConfig(CLIFlags{Concurrency: -3}, noEnv, log.New(io.Discard))
	assert.ErrorContains(t, err, "concurrency")
}

func TestBuildConfigLogsBadEnv(t *testing.T) {
	var logs bytes.Buffer
	cfg, err := buildConfig(CLIFlags{}, envOf(map[string]string{"IMAGEGRAB_TIMEOUT": "later"}), log.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration)
	assert.Contains(t, logs.String(), "IMAGEGRAB_TIMEOUT")
}

func TestRunEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<img src="/a.png"><img data-src="/b.png"><img src="/missing.png">`)
	})
	mux.HandleFunc("/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("a"))
	})
	mux.HandleFunc("/b.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("b"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "pics")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), CLIFlags{URL: srv.URL + "/", Dest: dest, Concurrency: 2}, &stdout, &stderr, noEnv, false)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Discovered image URLs: 3")
	assert.Contains(t, stdout.String(), "Saved: 2, Skipped: 1")
	assert.FileExists(t, filepath.Join(dest, "a.png"))
	assert.FileExists(t, filepath.Join(dest, "b.png"))
}

func TestRunFatalPageError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), CLIFlags{URL: srv.URL + "/", Dest: t.TempDir()}, &stdout, &stderr, noEnv, false)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "404")
}
