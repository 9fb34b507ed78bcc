package pathutil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nivl/minigit/internal/pathutil"
	"github.com/Nivl/minigit/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirPathFlagWithDefault(t *testing.T) {
	t.Parallel()

	t.Run("single valid path should pass", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err := p.Set(path)
		assert.NoError(t, err)
		assert.Equal(t, path, p.String())
		assert.Equal(t, "path", p.Type())
	})

	t.Run("no path should use default", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		p := pathutil.NewDirPathFlagWithDefault(path)
		assert.Equal(t, path, p.String())
	})

	t.Run("invalid path should fail", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err := p.Set(filepath.Join(path, "doesn't exists"))
		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("relative path should be appended to the default", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)
		require.NoError(t, os.MkdirAll(filepath.Join(path, "a"), 0o755))

		p := pathutil.NewDirPathFlagWithDefault(path)
		require.NoError(t, p.Set("a"))
		assert.Equal(t, filepath.Join(path, "a"), p.String())
	})

	t.Run("path should concat", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		finalPath := filepath.Join(path, "a", "b", "c")
		err := os.MkdirAll(finalPath, 0o755)
		require.NoError(t, err)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err = p.Set(path)
		assert.NoError(t, err)
		err = p.Set("a")
		assert.NoError(t, err)
		err = p.Set("b")
		assert.NoError(t, err)
		err = p.Set("c")
		assert.NoError(t, err)

		assert.Equal(t, finalPath, p.String())
	})

	t.Run("empty values should be ignored", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		finalPath := filepath.Join(path, "a", "b", "c")
		err := os.MkdirAll(finalPath, 0o755)
		require.NoError(t, err)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err = p.Set(path)
		assert.NoError(t, err)
		err = p.Set("a")
		assert.NoError(t, err)
		err = p.Set("")
		assert.NoError(t, err)
		err = p.Set("b")
		assert.NoError(t, err)
		err = p.Set("")
		assert.NoError(t, err)
		err = p.Set("c")
		assert.NoError(t, err)
		err = p.Set("")
		assert.NoError(t, err)

		assert.Equal(t, finalPath, p.String())
	})

	t.Run("absolute path should overwrite", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		fullPath := filepath.Join(path, "a", "b", "c")
		path2 := filepath.Join(path, "a", "b")
		err := os.MkdirAll(fullPath, 0o755)
		require.NoError(t, err)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err = p.Set(fullPath)
		assert.NoError(t, err)
		err = p.Set(path2)
		assert.NoError(t, err)

		assert.Equal(t, path2, p.String())
	})

	t.Run("should fail if path is a file", func(t *testing.T) {
		t.Parallel()

		f, cleanup := testhelper.TempFile(t)
		t.Cleanup(cleanup)

		p := pathutil.NewDirPathFlagWithDefault("/tmp")
		err := p.Set(f.Name())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "file.txt"), []byte("content"), 0o644))

	testCases := []struct {
		desc          string
		path          string
		expected      string
		expectedError error
	}{
		{
			desc:     "relative paths should be resolved from the base",
			path:     filepath.Join("sub", "file.txt"),
			expected: filepath.Join(dir, "sub", "file.txt"),
		},
		{
			desc:     "absolute paths should be kept",
			path:     filepath.Join(dir, "sub", "file.txt"),
			expected: filepath.Join(dir, "sub", "file.txt"),
		},
		{
			desc:          "directories should fail",
			path:          "sub",
			expectedError: pathutil.ErrIsDirectory,
		},
		{
			desc:          "an empty path targets the base",
			path:          "",
			expectedError: pathutil.ErrIsDirectory,
		},
		{
			desc:          "missing files should fail",
			path:          "nope.txt",
			expectedError: os.ErrNotExist,
		},
	}
	for i, tc := range testCases {
		tc := tc
		i := i
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			p, err := pathutil.FilePath(dir, tc.path)
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
		})
	}
}
