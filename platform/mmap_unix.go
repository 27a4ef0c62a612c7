// +build linux darwin

package platform

import (
	"os"

	"github.com/grailbio/base/errors"
	"golang.org/x/sys/unix"
)

// MappedFile is a read-only memory mapping of a local file.
type MappedFile struct {
	data []byte
}

// OpenMappedFile maps the whole file at path read-only.
func OpenMappedFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	defer f.Close() // the mapping outlives the descriptor
	info, err := f.Stat()
	if err != nil {
		return nil, errors.E(err, "stat", path)
	}
	if info.Size() == 0 {
		return &MappedFile{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.E(err, "mmap", path)
	}
	return &MappedFile{data: data}, nil
}

// Bytes returns the mapped contents. They are valid until Close.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close unmaps the file.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
