package tools

import (
	"io/fs"
	"testing/fstest"
)

// mockDataProvider serves bundled files from memory
type mockDataProvider struct {
	fsys fstest.MapFS
}

func newMockDataProvider(files map[string]string) *mockDataProvider {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &mockDataProvider{fsys: fsys}
}

func (m *mockDataProvider) ReadFile(name string) ([]byte, error) {
	return m.fsys.ReadFile(name)
}

func (m *mockDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return m.fsys.ReadDir(name)
}
