package git

import (
	"path/filepath"
	"testing"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRef(t *testing.T) {
	t.Parallel()

	r, fs := newTestRepo(t)
	oid := writeBlob(t, r, "content")

	require.NoError(t, r.CreateRef("heads/feature/x", oid))
	data, err := afero.ReadFile(fs, filepath.Join(r.DotGitPath(), "refs", "heads", "feature", "x"))
	require.NoError(t, err)
	assert.Equal(t, oid.String()+"\n", string(data))

	err = r.CreateRef("heads/nope.lock", oid)
	require.Error(t, err)
	assert.ErrorIs(t, err, ginternals.ErrRefNameInvalid)
}

func TestCreateTag(t *testing.T) {
	t.Parallel()

	t.Run("Should create an annotated tag", func(t *testing.T) {
		t.Parallel()

		r, fs := newTestRepo(t)
		commitID := writeCommit(t, r, writeTree(t, r))
		c, err := r.Object(commitID)
		require.NoError(t, err)

		tag := object.NewTag(&object.TagParams{
			Target:  c,
			Name:    "v1.0.0",
			Tagger:  object.NewSignature("Melvin Laplanche", "melvin.wont.reply@gmail.com"),
			Message: "first release\n",
		})
		require.NoError(t, r.CreateTag(tag))

		data, err := afero.ReadFile(fs, filepath.Join(r.DotGitPath(), "refs", "tags", "v1.0.0"))
		require.NoError(t, err)
		assert.Equal(t, tag.ID().String()+"\n", string(data))

		stored, err := r.Tag(tag.ID())
		require.NoError(t, err)
		assert.Equal(t, commitID, stored.Target())
		assert.Equal(t, "v1.0.0", stored.Name())

		err = r.CreateTag(tag)
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrRefExists)
	})

	t.Run("Should not write the tag object if the tag exists", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRepo(t)
		commitID := writeCommit(t, r, writeTree(t, r))
		require.NoError(t, r.CreateLightweightTag("v2.0.0", commitID))
		c, err := r.Object(commitID)
		require.NoError(t, err)

		tag := object.NewTag(&object.TagParams{
			Target:  c,
			Name:    "v2.0.0",
			Tagger:  object.NewSignature("Melvin Laplanche", "melvin.wont.reply@gmail.com"),
			Message: "second release\n",
		})
		err = r.CreateTag(tag)
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrRefExists)

		found, err := r.HasObject(tag.ID())
		require.NoError(t, err)
		assert.False(t, found, "the tag object should not have been written")
	})

	t.Run("Should create a lightweight tag", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRepo(t)
		commitID := writeCommit(t, r, writeTree(t, r))

		require.NoError(t, r.CreateLightweightTag("v1", commitID))
		oid, err := r.ResolveRef("tags/v1")
		require.NoError(t, err)
		assert.Equal(t, commitID, oid)
	})
}
