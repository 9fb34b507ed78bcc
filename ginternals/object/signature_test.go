package object_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Nivl/minigit/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureString(t *testing.T) {
	t.Parallel()

	sig := object.NewSignature("John Doe", "john@domain.tld")
	// we force UTC so the output doesn't depend on the timezone of the
	// machine
	now := time.Now().UTC()
	sig.Time = now

	expect := fmt.Sprintf("John Doe <john@domain.tld> %d +0000", now.Unix())
	assert.Equal(t, expect, sig.String())
	assert.False(t, sig.IsZero())
	assert.True(t, object.Signature{}.IsZero())
}

func TestNewSignatureFromBytes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc                 string
		signature            string
		expectsError         bool
		expectsErrorMatch    string
		expectedName         string
		expectedEmail        string
		expectedTimestamp    int64
		expectedTzOffsetMult int
	}{
		{
			desc:                 "valid with a negative offset",
			signature:            "Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700",
			expectedName:         "Melvin Laplanche",
			expectedEmail:        "melvin.wont.reply@gmail.com",
			expectedTimestamp:    int64(1566115917),
			expectedTzOffsetMult: -7,
		},
		{
			desc:                 "valid with a positive offset",
			signature:            "Melvin Laplanche <melvin.wont.reply@gmail.com> 1566005917 +0100",
			expectedName:         "Melvin Laplanche",
			expectedEmail:        "melvin.wont.reply@gmail.com",
			expectedTimestamp:    int64(1566005917),
			expectedTzOffsetMult: 1,
		},
		{
			desc:                 "valid with a single word name",
			signature:            "Melvin <melvin.wont.reply+filter@gmail.com> 1566005917 +0000",
			expectedName:         "Melvin",
			expectedEmail:        "melvin.wont.reply+filter@gmail.com",
			expectedTimestamp:    int64(1566005917),
			expectedTzOffsetMult: 0,
		},
		{
			desc:              "invalid offset",
			signature:         "Melvin Laplanche <melvin.wont.reply@gmail.com> 1566005917 nope",
			expectsError:      true,
			expectsErrorMatch: "invalid timezone format",
		},
		{
			desc:              "invalid timestamp",
			signature:         "Melvin Laplanche <melvin.wont.reply@gmail.com> nope -0700",
			expectsError:      true,
			expectsErrorMatch: "invalid timestamp",
		},
		{
			desc:              "missing email",
			signature:         "Melvin Laplanche melvin.wont.reply@gmail.com 1566005917 -0700",
			expectsError:      true,
			expectsErrorMatch: "couldn't find the email",
		},
		{
			desc:              "unterminated email",
			signature:         "Melvin Laplanche <melvin.wont.reply@gmail.com 1566005917 -0700",
			expectsError:      true,
			expectsErrorMatch: "not terminated",
		},
		{
			desc:              "missing timezone",
			signature:         "Melvin Laplanche <melvin.wont.reply@gmail.com> 1566005917",
			expectsError:      true,
			expectsErrorMatch: "expected a timestamp and a timezone",
		},
		{
			desc:              "empty sig",
			signature:         "",
			expectsError:      true,
			expectsErrorMatch: "couldn't find the email",
		},
	}
	for i, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			sig, err := object.NewSignatureFromBytes([]byte(tc.signature))
			if tc.expectsError {
				require.Error(t, err)
				assert.ErrorIs(t, err, object.ErrSignatureInvalid)
				assert.Contains(t, err.Error(), tc.expectsErrorMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedName, sig.Name)
			assert.Equal(t, tc.expectedEmail, sig.Email)
			assert.Equal(t, tc.expectedTimestamp, sig.Time.Unix())
			_, offset := sig.Time.Zone()
			assert.Equal(t, tc.expectedTzOffsetMult*3600, offset)
			assert.Equal(t, tc.signature, sig.String())
		})
	}
}
