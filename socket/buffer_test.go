package socket_test

import (
	"testing"

	"github.com/psp-go/psp-net/socket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendAndConsumePrefix(t *testing.T) {
	testCases := []struct {
		name     string
		appends  []string
		consume  int
		expected string
	}{
		{
			name:     "consume less than length keeps the suffix",
			appends:  []string{"hello ", "world"},
			consume:  6,
			expected: "world",
		},
		{
			name:     "consume exactly the length clears",
			appends:  []string{"hello"},
			consume:  5,
			expected: "",
		},
		{
			name:     "consume more than the length clamps",
			appends:  []string{"hi"},
			consume:  100,
			expected: "",
		},
		{
			name:     "consume zero is a no-op",
			appends:  []string{"hello"},
			consume:  0,
			expected: "hello",
		},
		{
			name:     "consume negative is a no-op",
			appends:  []string{"hello"},
			consume:  -1,
			expected: "hello",
		},
		{
			name:     "consume on empty buffer",
			appends:  nil,
			consume:  3,
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := socket.NewBuffer()
			total := 0
			for _, s := range tc.appends {
				buf.Append([]byte(s))
				total += len(s)
			}
			require.Equal(t, total, buf.Len())

			buf.ConsumePrefix(tc.consume)
			assert.Equal(t, tc.expected, string(buf.Bytes()))
			assert.Equal(t, len(tc.expected), buf.Len())
			assert.Equal(t, len(tc.expected) == 0, buf.IsEmpty())
		})
	}
}

func TestBufferLengthDecreasesByConsumed(t *testing.T) {
	buf := socket.NewBuffer()
	payload := []byte("the quick brown fox jumps over the lazy dog")
	buf.Append(payload)

	for consumed := 0; !buf.IsEmpty(); consumed += 7 {
		assert.Equal(t, string(payload[consumed:]), string(buf.Bytes()))
		buf.ConsumePrefix(7)
	}
	assert.Zero(t, buf.Len())
}
