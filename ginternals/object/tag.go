package object

import (
	"github.com/Nivl/minigit/ginternals"
	"golang.org/x/xerrors"
)

// KVLM keys used by tags
const (
	tagKeyObject = "object"
	tagKeyType   = "type"
	tagKeyTag    = "tag"
	tagKeyTagger = "tagger"
	tagKeyGPGSig = "gpgsig"
)

// TagParams represents all the data needed to create a Tag
// Params starting by Opt are optionals
type TagParams struct {
	Target    *Object
	Name      string
	Tagger    Signature
	Message   string
	OptGPGSig string
}

// Tag represents a Tag object
type Tag struct {
	rawObject *Object
	kvlm      KVLM

	tagger  Signature
	tag     string
	message string
	gpgSig  string

	target ginternals.Oid
	typ    Type
}

// NewTag creates a new Tag object
func NewTag(p *TagParams) *Tag {
	t := &Tag{
		target:  p.Target.ID(),
		typ:     p.Target.Type(),
		tag:     p.Name,
		tagger:  p.Tagger,
		message: p.Message,
		gpgSig:  p.OptGPGSig,
	}

	t.kvlm = KVLM{
		{Key: tagKeyObject, Value: t.target.String()},
		{Key: tagKeyType, Value: t.typ.String()},
		{Key: tagKeyTag, Value: t.tag},
		{Key: tagKeyTagger, Value: t.tagger.String()},
	}
	if t.gpgSig != "" {
		t.kvlm = append(t.kvlm, KV{Key: tagKeyGPGSig, Value: t.gpgSig})
	}
	t.kvlm = append(t.kvlm, KV{Key: KVLMMessageKey, Value: t.message})

	t.rawObject = New(TypeTag, t.kvlm.Bytes())
	return t
}

// NewTagFromObject creates a new Tag from a raw git object
//
// A tag has following format:
//
// object {sha}
// type {target_object_type}
// tag {tag_name}
// tagger {author_name} <{author_email}> {author_date_seconds} {author_date_timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
//  {gpg key over multiple lines}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {tag message}
//
// Note:
// - The gpgsig is optional
func NewTagFromObject(o *Object) (*Tag, error) {
	if o.Type() != TypeTag {
		return nil, xerrors.Errorf("type %s is not a tag: %w", o.Type(), ErrObjectInvalid)
	}
	tag := &Tag{
		rawObject: o,
		kvlm:      ParseKVLM(o.Bytes()),
	}

	var err error
	for _, kv := range tag.kvlm {
		switch kv.Key {
		case tagKeyObject:
			tag.target, err = ginternals.NewOidFromStr(kv.Value)
			if err != nil {
				return nil, xerrors.Errorf("could not parse target id %q: %w", kv.Value, ErrTagInvalid)
			}
		case tagKeyType:
			tag.typ, err = NewTypeFromString(kv.Value)
			if err != nil {
				return nil, xerrors.Errorf("invalid object type %s: %w", kv.Value, ErrTagInvalid)
			}
		case tagKeyTagger:
			tag.tagger, err = NewSignatureFromBytes([]byte(kv.Value))
			if err != nil {
				return nil, xerrors.Errorf("could not parse tagger: %w", err)
			}
		case tagKeyTag:
			tag.tag = kv.Value
		case tagKeyGPGSig:
			tag.gpgSig = kv.Value
		case KVLMMessageKey:
			tag.message = kv.Value
		}
	}

	if tag.tagger.IsZero() {
		return nil, xerrors.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	if tag.target.IsZero() {
		return nil, xerrors.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	if !tag.typ.IsValid() {
		return nil, xerrors.Errorf("tag has no type: %w", ErrTagInvalid)
	}

	return tag, nil
}

// ID returns the SHA of the tag object
func (t *Tag) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// Target returns the ID of the object targeted by the tag
func (t *Tag) Target() ginternals.Oid {
	return t.target
}

// Type returns the type of the targeted object
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.tag
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// KVLM returns a copy of the key/value pairs of the tag
func (t *Tag) KVLM() KVLM {
	out := make(KVLM, len(t.kvlm))
	copy(out, t.kvlm)
	return out
}

// ToObject returns the underlying Object
func (t *Tag) ToObject() *Object {
	return t.rawObject
}
