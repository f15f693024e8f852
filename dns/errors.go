package dns

import "errors"

var (
	// ErrNoData is returned when the server replied with zero bytes.
	// Nothing is parsed in that case.
	ErrNoData = errors.New("no data received")

	// ErrNoAnswers is returned when the response parsed but carried no
	// answer records.
	ErrNoAnswers = errors.New("no answers received")

	// ErrBadAddressData is returned when the first answer does not carry
	// exactly four bytes of IPv4 address data.
	ErrBadAddressData = errors.New("could not parse IP address")

	// ErrNotImplemented is returned by reverse resolution, which is
	// deliberately not implemented.
	ErrNotImplemented = errors.New("reverse resolution is not implemented")
)
