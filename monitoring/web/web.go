// Package web holds the status page of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DevEnv names the environment variable that makes the server read the
// status page from disk on every request. "1" or "true" selects the page in
// the source tree. Any other value except "0" and "false" names a directory.
const DevEnv = "OCEANDIST_MONITOR_DEV"

//go:embed dist/*
var page embed.FS

// Assets returns the files of the status page.
func Assets() http.FileSystem {
	dir := devDir(os.Getenv(DevEnv))
	if dir == "" {
		return embedded()
	}

	fmt.Fprintf(os.Stderr, "Serving the status page from %s\n", dir)

	return http.Dir(dir)
}

func devDir(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false":
		return ""
	case "1", "true":
		return sourceDir()
	default:
		return value
	}
}

func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the status page sources")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func embedded() http.FileSystem {
	sub, err := fs.Sub(page, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}
