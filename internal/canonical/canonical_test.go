package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_Cases(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"google.com", "https://google.com/"},
		{"HTTP://GOOGLE.COM/Path", "http://google.com/Path"},
		{"http://google.com:80/path", "http://google.com/path"},
		{"https://google.com:443/path", "https://google.com/path"},
		{"http://google.com:8080/path", "http://google.com:8080/path"},
		{"https://google.com/page#section", "https://google.com/page"},
		{"https://google.com/search?z=1&a=2&m=3", "https://google.com/search?a=2&m=3&z=1"},
		{"https://google.com/path/", "https://google.com/path"},
		{"https://google.com", "https://google.com/"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Canonicalize(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"google.com",
		"HTTP://GOOGLE.COM/Path",
		"https://google.com/search?z=1&a=2&m=3",
		"https://example.com:8443/a/b/?tag=a&tag=b",
	}

	for _, in := range inputs {
		first, err := Canonicalize(in)
		require.NoError(t, err)

		second, err := Canonicalize(first)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestCanonicalize_MultiValueCollapse(t *testing.T) {
	got, err := Canonicalize("https://example.com/search?tag=a&tag=b")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/search?tag=a", got)
}

func TestCanonicalize_EmptyValuePreserved(t *testing.T) {
	got, err := Canonicalize("https://example.com/search?flag=")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/search?flag=", got)
}

func TestCanonicalize_InvalidInput(t *testing.T) {
	_, err := Canonicalize("")
	require.ErrorIs(t, err, ErrInvalidURL)

	_, err = Canonicalize("http://")
	require.Error(t, err)

	_, err = Canonicalize("://bad")
	require.Error(t, err)
}
