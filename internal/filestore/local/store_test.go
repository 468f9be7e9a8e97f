package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/koustreak/metadump/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut_OverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(target, []byte(`[{"tableName":"old","columnName":"stale","dataType":"text"}, "padding padding"]`), 0o644))

	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "metadata.json", []byte(`[]`)))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestPut_UnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	s, err := New(dir)
	require.NoError(t, err)

	err = s.Put(context.Background(), "metadata.json", []byte(`[]`))
	assert.True(t, errs.IsWriteFailed(err))
}

func TestPut_CancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, errs.IsTimeout(s.Put(ctx, "metadata.json", []byte(`[]`))))
}

func TestNew_RejectsMissingOrFile(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing"))
	assert.True(t, errs.IsInvalidInput(err))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(file)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestLocation_IsAbsolute(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "metadata.json"), s.Location("metadata.json"))
}
