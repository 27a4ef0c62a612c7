// +build !linux,!darwin

package platform

import (
	"io/ioutil"

	"github.com/grailbio/base/errors"
)

// MappedFile holds the contents of a local file. Hosts without mmap read the
// file into memory.
type MappedFile struct {
	data []byte
}

// OpenMappedFile reads the whole file at path.
func OpenMappedFile(path string) (*MappedFile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	return &MappedFile{data: data}, nil
}

// Bytes returns the file contents. They are valid until Close.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close releases the contents.
func (m *MappedFile) Close() error {
	m.data = nil
	return nil
}
