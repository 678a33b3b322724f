// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysfs provides tolerant read and best-effort write access to
// kernel pseudo-files. Reads substitute zero values for anything that
// is missing or unreadable; callers that need to distinguish use Exists.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reader reads values below a root directory, typically a sysfs mount
type Reader struct {
	root string
}

func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Root returns the root directory the reader resolves against
func (r *Reader) Root() string {
	return r.root
}

func (r *Reader) path(parts []string) string {
	return filepath.Join(append([]string{r.root}, parts...)...)
}

// Exists reports whether the path exists below the root
func (r *Reader) Exists(parts ...string) bool {
	_, err := os.Stat(r.path(parts))
	return err == nil
}

// String returns the trimmed file content, or "" if unreadable
func (r *Reader) String(parts ...string) string {
	data, err := os.ReadFile(r.path(parts))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Uint64 returns the file content parsed as uint64, or 0 if unreadable
func (r *Reader) Uint64(parts ...string) uint64 {
	s := r.String(parts...)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Fields returns the whitespace-separated fields of the file content
func (r *Reader) Fields(parts ...string) []string {
	s := r.String(parts...)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// Writer writes a single value to a pseudo-file
type Writer interface {
	Write(path, value string) error
}

// FileWriter writes values directly to the filesystem
type FileWriter struct{}

var _ Writer = FileWriter{}

func (FileWriter) Write(path, value string) error {
	// sysfs attributes reject partial writes, so a single WriteFile
	// with a trailing newline matches what `echo value > path` does
	return os.WriteFile(path, []byte(value+"\n"), 0o644)
}
