package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/blog-publisher/internal/slug"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "surrounding space and punctuation", title: "  My First Post!! ", want: "my-first-post"},
		{name: "already a slug", title: "hello-world", want: "hello-world"},
		{name: "inner whitespace runs", title: "Go \t and\n\nRust", want: "go-and-rust"},
		{name: "hyphen runs collapse", title: "a -- b", want: "a-b"},
		{name: "underscores kept", title: "snake_case Title", want: "snake_case-title"},
		{name: "non-ascii letters stripped", title: "Café Crème", want: "caf-crme"},
		{name: "no-break space is whitespace", title: "one\u00a0two", want: "one-two"},
		{name: "symbols only", title: "!!!", want: ""},
		{name: "empty", title: "", want: ""},
		{name: "hyphens only", title: " - - ", want: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Derive(tt.title))
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	assert.Equal(t, slug.Derive("Same Title?"), slug.Derive("Same Title?"))
}

func TestValid(t *testing.T) {
	assert.True(t, slug.Valid("my-first-post"))
	assert.True(t, slug.Valid("2024"))
	assert.True(t, slug.Valid("-edge-"))
	assert.False(t, slug.Valid(""))
	assert.False(t, slug.Valid("-"))
	assert.False(t, slug.Valid("---"))
	assert.False(t, slug.Valid("../etc"))
	assert.False(t, slug.Valid("Upper"))
}
