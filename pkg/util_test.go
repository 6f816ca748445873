package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateRandomDigits(t *testing.T) {
	_, err := GenerateRandomDigits(0)
	require.Error(t, err)
	_, err = GenerateRandomDigits(19)
	require.Error(t, err)

	for i := 0; i < 200; i++ {
		n, err := GenerateRandomDigits(8)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(10000000))
		assert.LessOrEqual(t, n, int64(99999999))
	}

	n, err := GenerateRandomDigits(1)
	require.NoError(t, err)
	assert.True(t, n >= 1 && n <= 9)
}

func TestParsePositiveInt(t *testing.T) {
	cases := []struct {
		in     string
		def    int
		want   int
		wantOk bool
	}{
		{in: "", def: 15, want: 15, wantOk: true},
		{in: "3", def: 1, want: 3, wantOk: true},
		{in: "0", def: 1, want: 0, wantOk: false},
		{in: "-2", def: 1, want: 0, wantOk: false},
		{in: "abc", def: 1, want: 0, wantOk: false},
		{in: "1.5", def: 1, want: 0, wantOk: false},
		{in: "99999999999", def: 1, want: 0, wantOk: false},
	}

	for _, tc := range cases {
		got, ok := ParsePositiveInt(tc.in, tc.def)
		assert.Equal(t, tc.wantOk, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
