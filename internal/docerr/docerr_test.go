package docerr_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *docerr.Error
		want string
	}{
		{
			name: "message only",
			err:  docerr.New(docerr.EmptyInput, "query must not be empty"),
			want: "query must not be empty",
		},
		{
			name: "formatted message",
			err:  docerr.Newf(docerr.NotFound, "file not found: %s", "a/b.md"),
			want: "file not found: a/b.md",
		},
		{
			name: "with cause",
			err:  docerr.Wrap(docerr.InfrastructureFailure, "failed to read file", fs.ErrPermission),
			want: "failed to read file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := docerr.New(docerr.InvalidPath, "path traversal is not allowed").WithPath("../etc")
	wrapped := fmt.Errorf("get page: %w", base)

	assert.True(t, docerr.Is(wrapped, docerr.InvalidPath))
	assert.False(t, docerr.Is(wrapped, docerr.NotFound))
	assert.Equal(t, docerr.InvalidPath, docerr.KindOf(wrapped))

	var de *docerr.Error
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "../etc", de.Path)
}

func TestUnwrapReachesCause(t *testing.T) {
	err := docerr.Wrap(docerr.NotFound, "file not found", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, docerr.Kind(""), docerr.KindOf(errors.New("plain")))
	assert.False(t, docerr.Is(nil, docerr.NotFound))
}
