package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Spice Villa 1", "spice villa"},
		{"  SPICE   Villa  2 ", "spice villa"},
		{"Biryani-House", "biryani-house"},
		{"Cafe 42 Express", "cafe express"},
		{"99", ""},
		{"", ""},
		{"Tandoor\tExpress\n3", "tandoor express"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}
