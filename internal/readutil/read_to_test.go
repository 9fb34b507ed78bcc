package readutil_test

import (
	"fmt"
	"testing"

	"github.com/Nivl/minigit/internal/readutil"
	"github.com/stretchr/testify/assert"
)

func TestReadTo(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		data     string
		to       byte
		expected []byte
	}{
		{
			desc:     "should stop at the first separator",
			data:     "100644 file.txt",
			to:       ' ',
			expected: []byte("100644"),
		},
		{
			desc:     "should return nil when not found",
			data:     "100644",
			to:       0,
			expected: nil,
		},
		{
			desc:     "should return empty when the separator is first",
			data:     " foo",
			to:       ' ',
			expected: []byte{},
		},
	}
	for i, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, readutil.ReadTo([]byte(tc.data), tc.to))
		})
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		data     string
		expected []string
	}{
		{
			desc:     "empty input",
			data:     "",
			expected: []string{},
		},
		{
			desc:     "lines keep their newline",
			data:     "a\nb\n",
			expected: []string{"a\n", "b\n"},
		},
		{
			desc:     "last line without newline",
			data:     "a\n\nb",
			expected: []string{"a\n", "\n", "b"},
		},
	}
	for i, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			lines := readutil.SplitLines([]byte(tc.data))
			out := make([]string, 0, len(lines))
			for _, l := range lines {
				out = append(out, string(l))
			}
			assert.Equal(t, tc.expected, out)
		})
	}
}
