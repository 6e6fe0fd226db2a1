// Package os reports the operating system release sent in the login
// client environment.
package os

import (
	"bufio"
	"os"
	"runtime"
	"strings"
	"sync"
)

const osReleasePath = "/etc/os-release"

var (
	release     string
	releaseOnce sync.Once
)

// Release returns a short description of the host release, e.g.
// "ubuntu 22.04". It falls back to the kernel name when no release file is
// available. The result is cached.
func Release() string {
	releaseOnce.Do(func() {
		release = runtime.GOOS
		if runtime.GOOS != "linux" {
			return
		}
		if r := describeRelease(readOsRelease(osReleasePath)); r != "" {
			release = r
		}
	})
	return release
}

// describeRelease joins ID and VERSION_ID, falling back to PRETTY_NAME.
func describeRelease(fields map[string]string) string {
	id, version := fields["ID"], fields["VERSION_ID"]
	switch {
	case id != "" && version != "":
		return id + " " + version
	case id != "":
		return id
	}
	return fields["PRETTY_NAME"]
}

// readOsRelease parses the KEY=VALUE lines of an os-release file. It returns
// nil when the file cannot be read.
func readOsRelease(filename string) map[string]string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer func() {
		_ = file.Close()
	}()

	result := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		result[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return result
}

// unquote strips matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		if end := strings.IndexByte(s[1:], s[0]); end >= 0 {
			return s[1 : 1+end]
		}
	}
	return s
}
