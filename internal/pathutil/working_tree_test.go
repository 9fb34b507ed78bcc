package pathutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/Nivl/minigit/internal/pathutil"
	"github.com/Nivl/minigit/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingTreeFromPath(t *testing.T) {
	t.Parallel()

	t.Run("should be found fom subdir", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		err := os.MkdirAll(filepath.Join(path, gitpath.DotGitPath), 0o755)
		require.NoError(t, err)

		finalPath := filepath.Join(path, "a", "b", "c")
		err = os.MkdirAll(finalPath, 0o755)
		require.NoError(t, err)

		p, err := pathutil.WorkingTreeFromPath(finalPath, gitpath.DotGitPath)
		require.NoError(t, err)
		assert.Equal(t, path, p)
	})

	t.Run("a .git file should be ignored", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		err := os.WriteFile(filepath.Join(path, gitpath.DotGitPath), []byte("gitdir: nope"), 0o644)
		require.NoError(t, err)

		_, err = pathutil.WorkingTreeFromPath(path, gitpath.DotGitPath)
		require.Error(t, err)
		assert.ErrorIs(t, err, pathutil.ErrNoRepo)
	})

	t.Run("no repo should return an error", func(t *testing.T) {
		t.Parallel()

		path, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		finalPath := filepath.Join(path, "a", "b", "c")
		err := os.MkdirAll(finalPath, 0o755)
		require.NoError(t, err)

		_, err = pathutil.WorkingTreeFromPath(finalPath, "some-unlikely-metadata-dir")
		require.Error(t, err)
		assert.ErrorIs(t, err, pathutil.ErrNoRepo)
	})
}
