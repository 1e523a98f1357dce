package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// CupsFS is an afero filesystem that can also resolve paths the way the
// host OS would, so config and storage can run against memory in tests.
type CupsFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type osFS struct {
	afero.Fs
}

func NewOSFS() CupsFS {
	return &osFS{afero.NewOsFs()}
}

func (o *osFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (o *osFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type memFS struct {
	afero.Fs
}

func NewMemFS() CupsFS {
	return &memFS{afero.NewMemMapFs()}
}

func (m *memFS) Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join("/", path), nil
}

func (m *memFS) HomeDir() (string, error) {
	return "/home/cups", nil
}

// ResolvePath expands a leading ~ and makes the result absolute.
func ResolvePath(fs CupsFS, path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := fs.HomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return fs.Abs(path)
}
