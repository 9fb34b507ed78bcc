// Package readutil contains methods to simplify reading data
package readutil

import "bytes"

// ReadTo reads from b until to is seen and returns the bytes between the start
// and to, exclusive of to. Returns nil if it's not found
func ReadTo(b []byte, to byte) []byte {
	i := bytes.IndexByte(b, to)
	if i == -1 {
		return nil
	}
	return b[0:i]
}

// SplitLines splits b into lines. Each line keeps its trailing \n, the
// last line has none if b doesn't end by a \n.
func SplitLines(b []byte) [][]byte {
	lines := bytes.SplitAfter(b, []byte{'\n'})
	// SplitAfter returns an empty trailing element when b ends by
	// the separator
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}
