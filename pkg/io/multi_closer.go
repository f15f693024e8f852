package pkgio

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
)

// Close closes all the given closers in order, collecting every failure.
// Layered sockets use it to release the session and the wrapped transport
// in one call.
func Close(closers ...io.Closer) error {
	var err error
	for i, c := range closers {
		if c == nil {
			continue
		}
		if cErr := c.Close(); cErr != nil {
			err = multierror.Append(err, fmt.Errorf("error closing %d-th closer: %w", i, cErr))
		}
	}
	return err
}
