package corpus

import (
	"io/fs"
	"os"
)

// Filesystem defines the read-only filesystem capabilities the corpus needs.
// Names are absolute, OS-specific paths that have already passed Resolve.
//
// Implementations:
//   - osFilesystem: the real disk (production)
//   - test fakes that count calls or inject failures
type Filesystem interface {
	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns its entries.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Stat returns file info for the named path.
	Stat(name string) (fs.FileInfo, error)
}

// osFilesystem implements Filesystem on top of package os
type osFilesystem struct{}

// NewOSFilesystem returns the production Filesystem
func NewOSFilesystem() Filesystem {
	return osFilesystem{}
}

func (osFilesystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (osFilesystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFilesystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}
