package object

import (
	"github.com/Nivl/minigit/ginternals"
	"golang.org/x/xerrors"
)

// KVLM keys used by commits
const (
	commitKeyTree      = "tree"
	commitKeyParent    = "parent"
	commitKeyAuthor    = "author"
	commitKeyCommitter = "committer"
	commitKeyGPGSig    = "gpgsig"
)

// CommitOptions represents all the optional data available to create a commit
type CommitOptions struct {
	Message string
	GPGSig  string
	// Committer represent the person creating the commit.
	// If not provided, the author will be used as committer
	Committer Signature
	ParentsID []ginternals.Oid
}

// Commit represents a commit object
type Commit struct {
	rawObject *Object
	kvlm      KVLM

	author    Signature
	committer Signature

	gpgSig  string
	message string

	parentIDs []ginternals.Oid
	treeID    ginternals.Oid
}

// NewCommit creates a new Commit object
// Any provided Oids won't be check
func NewCommit(treeID ginternals.Oid, author Signature, opts *CommitOptions) *Commit {
	if opts == nil {
		opts = &CommitOptions{}
	}
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
		gpgSig:    opts.GPGSig,
	}
	if c.committer.IsZero() {
		c.committer = author
	}

	c.kvlm = KVLM{{Key: commitKeyTree, Value: c.treeID.String()}}
	for _, p := range c.parentIDs {
		c.kvlm = append(c.kvlm, KV{Key: commitKeyParent, Value: p.String()})
	}
	c.kvlm = append(c.kvlm,
		KV{Key: commitKeyAuthor, Value: c.author.String()},
		KV{Key: commitKeyCommitter, Value: c.committer.String()},
	)
	if c.gpgSig != "" {
		c.kvlm = append(c.kvlm, KV{Key: commitKeyGPGSig, Value: c.gpgSig})
	}
	c.kvlm = append(c.kvlm, KV{Key: KVLMMessageKey, Value: c.message})

	c.rawObject = New(TypeCommit, c.kvlm.Bytes())
	return c
}

// NewCommitFromObject creates a commit from a raw object
//
// A commit has following format:
//
// tree {sha}
// parent {sha}
// author {author_name} <{author_email}> {author_date_seconds} {author_date_timezone}
// committer {committer_name} <{committer_email}> {committer_date_seconds} {committer_date_timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
//  {gpg key over multiple lines}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {commit message}
//
// Note:
// - A commit can have 0, 1, or many parents lines
//   The very first commit of a repo has no parents
//   A regular commit as 1 parent
//   A merge commit has 2 or more parents
// - The gpgsig is optional
// - Unknown keys are kept in the KVLM but ignored
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.Type() != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit: %w", o.Type(), ErrObjectInvalid)
	}
	ci := &Commit{
		rawObject: o,
		kvlm:      ParseKVLM(o.Bytes()),
	}

	var err error
	for _, kv := range ci.kvlm {
		switch kv.Key {
		case commitKeyTree:
			ci.treeID, err = ginternals.NewOidFromStr(kv.Value)
			if err != nil {
				return nil, xerrors.Errorf("could not parse tree id %q: %w", kv.Value, ErrCommitInvalid)
			}
		case commitKeyParent:
			oid, err := ginternals.NewOidFromStr(kv.Value)
			if err != nil {
				return nil, xerrors.Errorf("could not parse parent id %q: %w", kv.Value, ErrCommitInvalid)
			}
			ci.parentIDs = append(ci.parentIDs, oid)
		case commitKeyAuthor:
			ci.author, err = NewSignatureFromBytes([]byte(kv.Value))
			if err != nil {
				return nil, xerrors.Errorf("could not parse author signature: %w", err)
			}
		case commitKeyCommitter:
			ci.committer, err = NewSignatureFromBytes([]byte(kv.Value))
			if err != nil {
				return nil, xerrors.Errorf("could not parse committer signature: %w", err)
			}
		case commitKeyGPGSig:
			ci.gpgSig = kv.Value
		case KVLMMessageKey:
			ci.message = kv.Value
		}
	}

	if ci.author.IsZero() {
		return nil, xerrors.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	if ci.treeID.IsZero() {
		return nil, xerrors.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}

	return ci, nil
}

// ID returns the SHA of the commit object
func (c *Commit) ID() ginternals.Oid {
	return c.rawObject.ID()
}

// Author returns the Signature of the person that made the changes
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the Signature of the person that created the commit
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the list of SHA of the parent commits (if any)
// - The first commit of an orphan branch has 0 parents
// - A regular commit or the result of a fast-forward merge has 1 parent
// - A true merge (no fast-forward) as 2 or more parents
func (c *Commit) ParentIDs() []ginternals.Oid {
	out := make([]ginternals.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the SHA of the commit's tree
func (c *Commit) TreeID() ginternals.Oid {
	return c.treeID
}

// GPGSig returns the GPG signature of the commit, if any
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// KVLM returns a copy of the key/value pairs of the commit
func (c *Commit) KVLM() KVLM {
	out := make(KVLM, len(c.kvlm))
	copy(out, c.kvlm)
	return out
}

// ToObject returns the underlying Object
func (c *Commit) ToObject() *Object {
	return c.rawObject
}
