package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches persist through the active backend, so tests that swap in
// the in-memory filesystem also isolate the history store.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
