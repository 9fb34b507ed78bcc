package git

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeObject creates an object file without caring about its
// content. Used to craft IDs sharing the same prefix
func writeFakeObject(t *testing.T, fs afero.Fs, r *Repository, sha string) {
	t.Helper()

	p := filepath.Join(r.DotGitPath(), gitpath.LooseObjectPath(sha))
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, afero.WriteFile(fs, p, []byte("fake"), 0o444))
}

func TestObjectFind(t *testing.T) {
	t.Parallel()

	r, fs := newTestRepo(t)
	blobID := writeBlob(t, r, "hello world\n") // 3b18e512dba79e4c8300dd08aeb37f8e728b8dad
	writeFakeObject(t, fs, r, "abcdef0000000000000000000000000000000001")
	writeFakeObject(t, fs, r, "abcdef0000000000000000000000000000000002")

	testCases := []struct {
		desc           string
		name           string
		expectedStatus FindStatus
		expectedID     ginternals.Oid
	}{
		{
			desc:           "abbreviated ID with a single match",
			name:           "3b18e5",
			expectedStatus: Found,
			expectedID:     blobID,
		},
		{
			desc:           "abbreviated ID with surrounding spaces",
			name:           "  3b18e5\n",
			expectedStatus: Found,
			expectedID:     blobID,
		},
		{
			desc:           "abbreviated ID with many matches",
			name:           "abcdef",
			expectedStatus: TooManyResults,
		},
		{
			desc:           "abbreviated ID without matches",
			name:           "3b18e6",
			expectedStatus: NoResult,
		},
		{
			desc:           "abbreviated ID without directory",
			name:           "ffffff",
			expectedStatus: NoResult,
		},
		{
			desc:           "abbreviated name that is not hex",
			name:           "master",
			expectedStatus: NotARef,
		},
		{
			desc:           "full ID",
			name:           "3b18e512dba79e4c8300dd08aeb37f8e728b8dad",
			expectedStatus: Found,
			expectedID:     blobID,
		},
		{
			desc:           "full ID of a missing object",
			name:           "3b18e512dba79e4c8300dd08aeb37f8e728b8dae",
			expectedStatus: PointsToDeletedRef,
		},
		{
			desc:           "raw ID of a missing object",
			name:           "aaaaaaaaaaaaaaaaaaaa",
			expectedStatus: PointsToDeletedRef,
		},
		{
			desc:           "40 chars that are not hex",
			name:           "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
			expectedStatus: NotARef,
		},
		{
			desc:           "unexpected length",
			name:           "3b18e512",
			expectedStatus: NotARef,
		},
		{
			desc:           "empty name",
			name:           "",
			expectedStatus: NotARef,
		},
		{
			desc:           "HEAD targeting a missing branch",
			name:           "HEAD",
			expectedStatus: NoResult,
		},
	}
	for i, tc := range testCases {
		tc := tc
		i := i
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			res, err := r.ObjectFind(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, res.Status, res.Status.String())
			assert.Equal(t, tc.expectedID, res.ID)
		})
	}
}

func TestObjectFindHead(t *testing.T) {
	t.Parallel()

	t.Run("Should follow the current branch", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRepo(t)
		commitID := writeCommit(t, r, writeTree(t, r))

		res, err := r.ObjectFind("HEAD")
		require.NoError(t, err)
		assert.Equal(t, Found, res.Status)
		assert.Equal(t, commitID, res.ID)

		head, err := r.Head()
		require.NoError(t, err)
		assert.Equal(t, commitID, head)
	})

	t.Run("Should support a detached HEAD", func(t *testing.T) {
		t.Parallel()

		r, fs := newTestRepo(t)
		blobID := writeBlob(t, r, "hello world\n")
		require.NoError(t, afero.WriteFile(fs, filepath.Join(r.DotGitPath(), gitpath.HEADPath), []byte("3b18e5\n"), 0o644))

		res, err := r.ObjectFind("HEAD")
		require.NoError(t, err)
		assert.Equal(t, Found, res.Status)
		assert.Equal(t, blobID, res.ID)

		branch, err := r.ActiveBranch()
		require.NoError(t, err)
		assert.Equal(t, ginternals.Head, branch)
	})

	t.Run("Should report a branch targeting a deleted object", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRepo(t)
		oid, err := ginternals.NewOidFromStr("3b18e512dba79e4c8300dd08aeb37f8e728b8dad")
		require.NoError(t, err)
		require.NoError(t, r.CreateRef("heads/master", oid))

		res, err := r.ObjectFind("HEAD")
		require.NoError(t, err)
		assert.Equal(t, PointsToDeletedRef, res.Status)

		_, err = r.Head()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoHead)
	})

	t.Run("Should fail on a reference cycle", func(t *testing.T) {
		t.Parallel()

		r, fs := newTestRepo(t)
		p := filepath.Join(r.DotGitPath(), "refs", "heads", "master")
		require.NoError(t, afero.WriteFile(fs, p, []byte("ref: refs/heads/master\n"), 0o644))

		_, err := r.ObjectFind("HEAD")
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrRefDepthExceeded)

		_, err = r.ResolveRef("heads/master")
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrRefDepthExceeded)
	})
}

func TestResolveRef(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	commitID := writeCommit(t, r, writeTree(t, r))
	require.NoError(t, r.CreateSymbolicRef("heads/alias", "heads/master"))

	testCases := []struct {
		desc          string
		name          string
		expectedError error
	}{
		{desc: "short name", name: "heads/master"},
		{desc: "full name", name: "refs/heads/master"},
		{desc: "symbolic ref", name: "heads/alias"},
		{desc: "HEAD", name: "HEAD"},
		{desc: "missing ref", name: "heads/nope", expectedError: ginternals.ErrRefNotFound},
		{desc: "invalid name", name: "heads/a..b", expectedError: ginternals.ErrRefNameInvalid},
	}
	for i, tc := range testCases {
		tc := tc
		i := i
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			oid, err := r.ResolveRef(tc.name)
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, commitID, oid)
		})
	}
}
