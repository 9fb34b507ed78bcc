package object_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/Nivl/minigit/ginternals/object"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc       string
		typ        object.Type
		content    string
		expectedID string
	}{
		{
			desc:       "empty blob",
			typ:        object.TypeBlob,
			content:    "",
			expectedID: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391",
		},
		{
			desc:       "blob with content",
			typ:        object.TypeBlob,
			content:    "hello world\n",
			expectedID: "3b18e512dba79e4c8300dd08aeb37f8e728b8dad",
		},
		{
			desc:       "empty tree",
			typ:        object.TypeTree,
			content:    "",
			expectedID: "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
		},
	}
	for i, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			o := object.New(tc.typ, []byte(tc.content))
			assert.Equal(t, tc.expectedID, o.ID().String())
			assert.Equal(t, len(tc.content), o.Size())
			assert.Equal(t, tc.typ, o.Type())
		})
	}
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	o := object.New(object.TypeBlob, []byte("hello world\n"))
	assert.Equal(t, []byte("blob 12\x00hello world\n"), o.Envelope())
}

func TestCompress(t *testing.T) {
	t.Parallel()

	o := object.New(object.TypeCommit, []byte("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n"))
	data, err := o.Compress()
	require.NoError(t, err)

	r, err := zlib.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, r.Close())
	})
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, o.Envelope(), raw)
}

func TestType(t *testing.T) {
	t.Parallel()

	for _, typ := range []object.Type{object.TypeBlob, object.TypeTree, object.TypeCommit, object.TypeTag} {
		assert.True(t, typ.IsValid())
		parsed, err := object.NewTypeFromString(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	assert.False(t, object.Type(6).IsValid())
	assert.Equal(t, "unknown(6)", object.Type(6).String())

	_, err := object.NewTypeFromString("delta")
	require.ErrorIs(t, err, object.ErrObjectUnknown)
}

func TestAsX(t *testing.T) {
	t.Parallel()

	blob := object.New(object.TypeBlob, []byte("data"))
	b, err := blob.AsBlob()
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), b.BytesCopy())
	assert.Equal(t, blob.ID(), b.ID())

	_, err = blob.AsTree()
	require.ErrorIs(t, err, object.ErrObjectInvalid)
	_, err = blob.AsCommit()
	require.ErrorIs(t, err, object.ErrObjectInvalid)
	_, err = blob.AsTag()
	require.ErrorIs(t, err, object.ErrObjectInvalid)

	_, err = object.New(object.TypeTree, nil).AsBlob()
	require.ErrorIs(t, err, object.ErrObjectInvalid)
}
