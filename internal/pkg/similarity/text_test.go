package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical", a: "need invoicing tool", b: "need invoicing tool", expected: 1},
		{name: "case insensitive", a: "Need Invoicing Tool", b: "need invoicing tool", expected: 1},
		{name: "disjoint", a: "alpha beta", b: "gamma delta", expected: 0},
		{name: "half overlap", a: "a b c", b: "b c d", expected: 0.5},
		{name: "repeated tokens are a set", a: "a a a b", b: "a b", expected: 1},
		{name: "empty left", a: "", b: "something", expected: 0},
		{name: "whitespace only", a: "  \t\n ", b: "something", expected: 0},
		{name: "both empty", a: "", b: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Text(tt.a, tt.b), 1e-9)
		})
	}
}

func TestText_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"need an invoicing tool for freelancers", "invoicing tool for small agencies"},
		{"one", "one two three"},
		{"", "x"},
		{"Hello World", "world hello again"},
	}
	for _, p := range pairs {
		assert.Equal(t, Text(p[0], p[1]), Text(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestText_SelfIsOne(t *testing.T) {
	for _, s := range []string{"x", "need invoicing tool", "A a B b"} {
		assert.Equal(t, 1.0, Text(s, s))
	}
}

func TestNormalizePhrase(t *testing.T) {
	assert.Equal(t, "need a crm for plumbers", NormalizePhrase("  Need a  CRM\tfor Plumbers "))
}
