package git

import (
	"bytes"
	"errors"
	"strings"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/gitpath"
	"golang.org/x/xerrors"
)

// ShortOidSize is the number of chars of an abbreviated object ID
const ShortOidSize = 6

// FindStatus represents the outcome of a lookup by name
type FindStatus int8

// List of all the possible lookup outcomes
const (
	// Found means the name matched exactly one existing object
	Found FindStatus = iota
	// NoResult means nothing matched the name
	NoResult
	// TooManyResults means an abbreviated ID matched more than one
	// object
	TooManyResults
	// PointsToDeletedRef means the name was resolved to an ID but the
	// object doesn't exist
	PointsToDeletedRef
	// NotARef means the name doesn't look like anything we can resolve
	NotARef
)

func (s FindStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NoResult:
		return "no result"
	case TooManyResults:
		return "too many results"
	case PointsToDeletedRef:
		return "points to a deleted ref"
	case NotARef:
		return "not a ref"
	default:
		return "unknown"
	}
}

// FindResult contains the outcome of a lookup by name.
// ID is only set when Status is Found
type FindResult struct {
	Status FindStatus
	ID     ginternals.Oid
}

// ObjectFind resolves a name to the ID of an existing object.
// The name can be:
// - HEAD
// - an abbreviated ID of 6 chars
// - a full ID of 40 hex chars
// - a full ID as its 20 raw bytes
// An error is only returned for conditions that cannot be recovered
// from, like a reference cycle. A lookup failure is reported
// through FindResult.Status
func (r *Repository) ObjectFind(name string) (FindResult, error) {
	name = strings.TrimSpace(name)
	if name == ginternals.Head {
		return r.head()
	}
	return r.findByID(name)
}

// findByID resolves an abbreviated or full ID
func (r *Repository) findByID(name string) (FindResult, error) {
	var oid ginternals.Oid
	switch len(name) {
	case ShortOidSize:
		if !ginternals.IsHex(name) {
			return FindResult{Status: NotARef}, nil
		}
		matches, err := r.dotGit.LooseObjectPrefix(name)
		if err != nil {
			return FindResult{}, xerrors.Errorf("could not look for %s: %w", name, err)
		}
		switch len(matches) {
		case 0:
			return FindResult{Status: NoResult}, nil
		case 1:
			oid = matches[0]
		default:
			return FindResult{Status: TooManyResults}, nil
		}
	case ginternals.OidHexSize:
		var err error
		oid, err = ginternals.NewOidFromStr(name)
		if err != nil {
			return FindResult{Status: NotARef}, nil
		}
	case ginternals.OidSize:
		var err error
		oid, err = ginternals.NewOidFromHex([]byte(name))
		if err != nil {
			return FindResult{Status: NotARef}, nil
		}
	default:
		return FindResult{Status: NotARef}, nil
	}
	return r.verify(oid)
}

// verify makes sure the object still exists on disk
func (r *Repository) verify(oid ginternals.Oid) (FindResult, error) {
	found, err := r.dotGit.HasObject(oid)
	if err != nil {
		return FindResult{}, xerrors.Errorf("could not check object %s: %w", oid.String(), err)
	}
	if !found {
		return FindResult{Status: PointsToDeletedRef}, nil
	}
	return FindResult{Status: Found, ID: oid}, nil
}

// head resolves HEAD, following the symbolic references if needed
func (r *Repository) head() (FindResult, error) {
	data, err := r.dotGit.RawReference(ginternals.Head)
	if err != nil {
		if errors.Is(err, ginternals.ErrRefNotFound) {
			return FindResult{Status: NoResult}, nil
		}
		return FindResult{}, xerrors.Errorf("could not read HEAD: %w", err)
	}

	if !bytes.HasPrefix(data, []byte(ginternals.SymbolicRefPrefix)) {
		// a detached HEAD contains an ID
		return r.findByID(strings.TrimSpace(string(data)))
	}

	ref, err := r.dotGit.Reference(ginternals.Head)
	if err != nil {
		switch {
		case errors.Is(err, ginternals.ErrRefNotFound),
			errors.Is(err, ginternals.ErrRefInvalid),
			errors.Is(err, ginternals.ErrRefNameInvalid):
			return FindResult{Status: NoResult}, nil
		default:
			return FindResult{}, xerrors.Errorf("could not resolve HEAD: %w", err)
		}
	}
	return r.verify(ref.Target())
}

// Head returns the ID of the commit targeted by HEAD.
// ErrNoHead is returned if HEAD cannot be resolved to an existing
// object
func (r *Repository) Head() (ginternals.Oid, error) {
	res, err := r.head()
	if err != nil {
		return ginternals.NullOid, err
	}
	if res.Status != Found {
		return ginternals.NullOid, xerrors.Errorf("%s: %w", res.Status, ErrNoHead)
	}
	return res.ID, nil
}

// ResolveRef returns the ID targeted by a reference, following
// the symbolic references.
// heads/master and refs/heads/master are both valid names.
// ginternals.ErrRefDepthExceeded is returned if the reference chain
// is too long, which usually means there is a cycle
func (r *Repository) ResolveRef(name string) (ginternals.Oid, error) {
	ref, err := r.dotGit.Reference(ginternals.NormalizeRefName(name))
	if err != nil {
		return ginternals.NullOid, err
	}
	return ref.Target(), nil
}

// ActiveBranch returns the short name of the branch targeted by HEAD,
// or HEAD if the repository is in detached mode
func (r *Repository) ActiveBranch() (string, error) {
	data, err := r.dotGit.RawReference(ginternals.Head)
	if err != nil {
		if errors.Is(err, ginternals.ErrRefNotFound) {
			return ginternals.Head, nil
		}
		return "", xerrors.Errorf("could not read HEAD: %w", err)
	}
	prefix := ginternals.SymbolicRefPrefix + gitpath.RefsHeadsPath + "/"
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return ginternals.Head, nil
	}
	return strings.TrimSpace(string(data[len(prefix):])), nil
}
