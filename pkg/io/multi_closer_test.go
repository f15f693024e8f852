package pkgio_test

import (
	"errors"
	"testing"

	pkgio "github.com/psp-go/psp-net/pkg/io"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func TestCloseClosesEverythingAndCollectsFailures(t *testing.T) {
	errFirst := errors.New("first failure")
	errSecond := errors.New("second failure")
	closers := []*fakeCloser{{err: errFirst}, {}, {err: errSecond}}

	err := pkgio.Close(closers[0], nil, closers[1], closers[2])
	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
	for _, c := range closers {
		assert.True(t, c.closed)
	}

	assert.NoError(t, pkgio.Close(&fakeCloser{}, nil))
}
