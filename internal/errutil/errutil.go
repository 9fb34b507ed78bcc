// Package errutil contains methods to simplify working with error
package errutil

import (
	"io"

	"go.uber.org/multierr"
)

// Close closes the closer and merges the error returned by Close()
// into err
func Close(c io.Closer, err *error) { //nolint: gocritic // the pointer of pointer is on purpose so we can change the value
	*err = multierr.Append(*err, c.Close())
}
