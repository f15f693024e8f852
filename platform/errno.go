package platform

import (
	"errors"
	"fmt"
)

type (
	// Errno is a failed platform syscall. It carries the numeric platform
	// error code and, when available, a short human description of the
	// operation that failed. The core never interprets specific codes.
	Errno struct {
		Code int
		Desc string
		err  error
	}
)

// NewErrno creates an *Errno with just the numeric code.
func NewErrno(code int) *Errno {
	return &Errno{Code: code}
}

// NewErrnoWithDescription creates an *Errno carrying a human description of
// the failed operation.
func NewErrnoWithDescription(code int, desc string) *Errno {
	return &Errno{Code: code, Desc: desc}
}

// WrapErrno creates an *Errno preserving the underlying OS error for
// errors.Is/As chains.
func WrapErrno(code int, desc string, err error) *Errno {
	return &Errno{Code: code, Desc: desc, err: err}
}

func (e *Errno) Error() string {
	if e.Desc == "" {
		return fmt.Sprintf("errno %d", e.Code)
	}
	return fmt.Sprintf("errno %d (%s)", e.Code, e.Desc)
}

func (e *Errno) Unwrap() error {
	return e.err
}

// IsErrno tells whether err carries a platform error code, returning the
// code when it does.
func IsErrno(err error) (int, bool) {
	var errno *Errno
	if errors.As(err, &errno) {
		return errno.Code, true
	}
	return 0, false
}
