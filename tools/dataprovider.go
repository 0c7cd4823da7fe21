package tools

import (
	"io/fs"
)

// DataProvider gives access to the static files bundled with the server.
//
// Implementations:
//   - embeddedDataProvider: embed.FS, used in production
//   - mockDataProvider: fstest.MapFS, used in tests
type DataProvider interface {
	// ReadFile reads the named file, relative to the data root
	// (e.g. "data/guides/usage.md").
	ReadFile(name string) ([]byte, error)

	// ReadDir lists the named directory (e.g. "data/guides").
	ReadDir(name string) ([]fs.DirEntry, error)
}
