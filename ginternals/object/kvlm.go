package object

import (
	"bytes"
	"strings"

	"github.com/Nivl/minigit/internal/readutil"
)

// KVLMMessageKey is the key used to store the free-text message of
// a KVLM
const KVLMMessageKey = "__message__"

// KV represents a single key/value pair of a KVLM
type KV struct {
	Key   string
	Value string
}

// KVLM (Key-Value List with Message) is the format used by commits and
// tags. It's an ordered list of key/value pairs, followed by a blank
// line and a message.
// Keys may appear more than once (a merge commit has many "parent").
// The message, if any, is stored under KVLMMessageKey.
//
// Example:
//
// tree {sha}
// parent {sha}
// author {name} <{email}> {timestamp} {timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
//  {each line of the value is prefixed by a space}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {message}
type KVLM []KV

// ParseKVLM parses raw data into a KVLM.
// Lines without a space that are not part of a value or of the message
// are ignored.
func ParseKVLM(data []byte) KVLM {
	kvlm := KVLM{}

	var key string
	var value []byte
	pending := false
	flush := func() {
		if !pending {
			return
		}
		v := bytes.TrimSuffix(value, []byte{'\n'})
		v = bytes.ReplaceAll(v, []byte("\n "), []byte{'\n'})
		kvlm = append(kvlm, KV{Key: key, Value: string(v)})
		pending = false
	}

	var msg []byte
	inMessage := false
	for _, line := range readutil.SplitLines(data) {
		if inMessage {
			msg = append(msg, line...)
			continue
		}

		switch {
		// continuation of a multi-line value
		case line[0] == ' ':
			if pending {
				value = append(value, line...)
			}
		// a blank line marks the beginning of the message
		case len(line) == 1 && line[0] == '\n':
			flush()
			inMessage = true
			msg = []byte{}
		default:
			flush()
			i := bytes.IndexByte(line, ' ')
			if i == -1 {
				continue
			}
			key = string(line[:i])
			value = append([]byte{}, line[i+1:]...)
			pending = true
		}
	}
	flush()

	if inMessage {
		kvlm = append(kvlm, KV{Key: KVLMMessageKey, Value: string(msg)})
	}
	return kvlm
}

// Bytes returns the raw representation of the KVLM.
// The message is always written last, regardless of its position
// in the list.
func (kvlm KVLM) Bytes() []byte {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	buf := new(bytes.Buffer)

	var msg *string
	for i, kv := range kvlm {
		if kv.Key == KVLMMessageKey {
			msg = &kvlm[i].Value
			continue
		}
		buf.WriteString(kv.Key)
		buf.WriteByte(' ')
		buf.WriteString(kvlmEscape(kv.Value))
		buf.WriteByte('\n')
	}

	if msg != nil {
		buf.WriteByte('\n')
		buf.WriteString(*msg)
	}
	return buf.Bytes()
}

func kvlmEscape(v string) string {
	return strings.ReplaceAll(v, "\n", "\n ")
}

// Get returns the value of the first pair having the given key
func (kvlm KVLM) Get(key string) (value string, ok bool) {
	for _, kv := range kvlm {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// GetAll returns the values of all the pairs having the given key,
// in order
func (kvlm KVLM) GetAll(key string) []string {
	var out []string
	for _, kv := range kvlm {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Message returns the message of the KVLM, if any
func (kvlm KVLM) Message() (msg string, ok bool) {
	return kvlm.Get(KVLMMessageKey)
}
