package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// ErrSignatureInvalid is an error thrown when the signature of a commit
// or a tag couldn't be parsed
var ErrSignatureInvalid = errors.New("signature is invalid")

// Signature represents the author/committer and time of a commit,
// or the tagger of a tag
type Signature struct {
	Time  time.Time
	Name  string
	Email string
}

// String returns a stringified version of the Signature
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero returns whether the signature has Zero value
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature generates a signature at the current date and time
func NewSignature(name, email string) Signature {
	return Signature{
		Name:  name,
		Email: email,
		Time:  time.Now(),
	}
}

// NewSignatureFromBytes returns a signature from an array of byte
//
// A signature has the following format:
// User Name <user.email@domain.tld> timestamp timezone
// Ex:
// Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	emailStart := bytes.IndexByte(b, '<')
	if emailStart == -1 {
		return sig, xerrors.Errorf("couldn't find the email of %q: %w", string(b), ErrSignatureInvalid)
	}
	emailEnd := bytes.IndexByte(b[emailStart:], '>')
	if emailEnd == -1 {
		return sig, xerrors.Errorf("email of %q is not terminated: %w", string(b), ErrSignatureInvalid)
	}
	emailEnd += emailStart

	sig.Name = strings.TrimSpace(string(b[:emailStart]))
	sig.Email = string(b[emailStart+1 : emailEnd])

	// what's left should be "timestamp timezone"
	fields := strings.Fields(string(b[emailEnd+1:]))
	if len(fields) != 2 {
		return sig, xerrors.Errorf("expected a timestamp and a timezone after the email in %q: %w", string(b), ErrSignatureInvalid)
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return sig, xerrors.Errorf("invalid timestamp %s: %w", fields[0], ErrSignatureInvalid)
	}

	// To get the timezone we parse an empty date that only has
	// the timezone
	tz, err := time.Parse("-0700", fields[1])
	if err != nil {
		return sig, xerrors.Errorf("invalid timezone format %s: %w", fields[1], ErrSignatureInvalid)
	}
	sig.Time = time.Unix(ts, 0).In(tz.Location())
	return sig, nil
}
