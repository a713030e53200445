package inspect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastat/internal/format"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlinks unavailable: %v", err)
		}
		require.NoError(t, err)
	}
}

func TestInspectRegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.txt")
	writeFile(t, path, 1_500_000)

	mtime := time.Date(2023, time.June, 1, 14, 30, 15, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	rep, err := Inspect(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "report.txt", rep.Name)
	assert.Equal(t, path, rep.Path)
	assert.Equal(t, File, rep.Kind)
	assert.Equal(t, uint64(1_500_000), rep.SizeBytes)
	assert.Equal(t, "1.5 megabytes", rep.Size.String())
	assert.False(t, rep.IsSymlink)
	assert.False(t, rep.Followed)
	assert.Empty(t, rep.LinkTarget)
	assert.Equal(t, "2023-06-01 14:30:15", rep.LastModified)
	assert.True(t, rep.ModTime.Equal(mtime))
	assert.Nil(t, rep.Extension)
}

func TestInspectSizeTiers(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		size     int
		units    format.UnitStyle
		expected string
	}{
		{"empty long", 0, format.Long, "0 bytes"},
		{"kilobytes long", 1_000, format.Long, "1000 bytes"},
		{"kilobytes short", 1_000, format.Short, "1 KB"},
		{"megabytes short", 2_000_000, format.Short, "2 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			writeFile(t, path, tt.size)

			rep, err := Inspect(path, Options{Units: tt.units})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rep.Size.String())
		})
	}
}

func TestInspectGigabyteBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("sparse gigabyte file skipped in short mode")
	}
	tmpDir := t.TempDir()

	exact := filepath.Join(tmpDir, "exact.bin")
	f, err := os.Create(exact)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(1_000_000_000))
	require.NoError(t, f.Close())

	below := filepath.Join(tmpDir, "below.bin")
	f, err = os.Create(below)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(999_999_999))
	require.NoError(t, f.Close())

	rep, err := Inspect(exact, Options{})
	require.NoError(t, err)
	assert.Equal(t, "1 gigabytes", rep.Size.String())

	rep, err = Inspect(below, Options{})
	require.NoError(t, err)
	assert.Equal(t, "megabytes", rep.Size.Unit)
}

func TestInspectDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	require.NoError(t, os.Mkdir(dataDir, 0o755))

	rep, err := Inspect(dataDir+string(filepath.Separator), Options{})
	require.NoError(t, err)

	assert.Equal(t, "data", rep.Name)
	assert.Equal(t, Directory, rep.Kind)
	assert.Equal(t, "Folder", rep.Kind.Label())
	assert.False(t, rep.IsSymlink)
}

func TestInspectSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.bin")
	writeFile(t, target, 2_000_000)
	link := filepath.Join(tmpDir, "link")
	symlinkOrSkip(t, target, link)

	t.Run("own metadata", func(t *testing.T) {
		rep, err := Inspect(link, Options{})
		require.NoError(t, err)
		assert.True(t, rep.IsSymlink)
		assert.False(t, rep.Followed)
		assert.Equal(t, "link", rep.Name)
		assert.Equal(t, target, rep.LinkTarget)
		assert.NotEqual(t, uint64(2_000_000), rep.SizeBytes)
	})

	t.Run("followed", func(t *testing.T) {
		rep, err := Inspect(link, Options{Follow: true})
		require.NoError(t, err)
		assert.True(t, rep.IsSymlink)
		assert.True(t, rep.Followed)
		assert.Equal(t, File, rep.Kind)
		assert.Equal(t, uint64(2_000_000), rep.SizeBytes)
		assert.Equal(t, "2 megabytes", rep.Size.String())
	})
}

func TestInspectSymlinkToDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "dir")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(tmpDir, "dirlink")
	symlinkOrSkip(t, target, link)

	rep, err := Inspect(link, Options{})
	require.NoError(t, err)
	assert.Equal(t, File, rep.Kind)

	rep, err = Inspect(link, Options{Follow: true})
	require.NoError(t, err)
	assert.Equal(t, Directory, rep.Kind)
}

func TestInspectDanglingSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	link := filepath.Join(tmpDir, "dangling")
	symlinkOrSkip(t, filepath.Join(tmpDir, "missing"), link)

	rep, err := Inspect(link, Options{})
	require.NoError(t, err)
	assert.True(t, rep.IsSymlink)

	_, err = Inspect(link, Options{Follow: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInaccessible)
}

func TestInspectNonexistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	rep, err := Inspect(path, Options{})
	assert.Nil(t, rep)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInaccessible)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrClockUnavailable)
	assert.Equal(t, Inaccessible, KindOf(err))

	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, path, ie.Path)
	assert.Contains(t, err.Error(), "Failed to get metadata for file '"+path+"'")
}

func TestInspectUnresolvableName(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"current directory", "."},
		{"parent directory", ".."},
		{"filesystem root", string(filepath.Separator)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.path, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnresolvableName)
			assert.Equal(t, UnresolvableName, KindOf(err))
			assert.Contains(t, err.Error(), "Failed to resolve file name")
		})
	}
}

func TestFinalComponent(t *testing.T) {
	tests := []struct {
		path      string
		expected  string
		expectErr bool
	}{
		{"report.txt", "report.txt", false},
		{filepath.Join("a", "b", "c.txt"), "c.txt", false},
		{filepath.Join("a", "data") + string(filepath.Separator), "data", false},
		{"", "", true},
		{"/", "", true},
		{string(filepath.Separator), "", true},
		{".", "", true},
		{filepath.Join("a", ".."), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, err := finalComponent(tt.path)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestInspectExtended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext.txt")
	writeFile(t, path, 10)

	rep, err := Inspect(path, Options{Extended: true})
	require.NoError(t, err)

	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		require.NotNil(t, rep.Extension)
		assert.Equal(t, runtime.GOOS, rep.Extension.Platform)
		assert.Equal(t, uint64(1), rep.Extension.Links)
		assert.False(t, rep.Extension.AccessTime.IsZero())
	default:
		assert.Nil(t, rep.Extension)
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "Inaccessible", Inaccessible.String())
	assert.Equal(t, "ClockUnavailable", ClockUnavailable.String())
	assert.Equal(t, "UnresolvableName", UnresolvableName.String())
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("other")))

	err := &Error{Kind: ClockUnavailable, Path: "x", Err: errNoModTime}
	assert.ErrorIs(t, err, ErrClockUnavailable)
	assert.Equal(t, "Failed to get last modified time for file 'x': "+errNoModTime.Error(), err.Error())
}
