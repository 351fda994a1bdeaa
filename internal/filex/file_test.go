package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubdDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubdDir(".greenwallet")
	require.NoError(t, err)

	want := filepath.Join(tmp, ".greenwallet")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
	}
}

func TestEnsureSubdDir_AbsolutePathAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := EnsureSubdDir(dir)
	require.NoError(t, err)
	second, err := EnsureSubdDir(dir)
	require.NoError(t, err)

	require.Equal(t, dir, first)
	require.Equal(t, first, second)
}

func TestEnsureSubdDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("data", []byte("x"), 0o600))

	_, err := EnsureSubdDir("data")
	require.Error(t, err)
}

func TestReadOptional(t *testing.T) {
	b, err := ReadOptional("")
	require.NoError(t, err)
	require.Nil(t, b)

	path := filepath.Join(t.TempDir(), "anchors.pem")
	require.NoError(t, os.WriteFile(path, []byte("pem"), 0o600))
	b, err = ReadOptional(path)
	require.NoError(t, err)
	require.Equal(t, []byte("pem"), b)

	_, err = ReadOptional(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
}
