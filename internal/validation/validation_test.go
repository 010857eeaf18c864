package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blog-publisher/internal/validation"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "valid with tags",
			raw:  `{"title":"Hello","description":"d","date":"2024-01-15","tags":["go","web"],"content":"body"}`,
			want: []string{},
		},
		{
			name: "tags absent",
			raw:  `{"title":"Hello","description":"d","date":"2024-01-15","content":"body"}`,
			want: []string{},
		},
		{
			name: "tags null",
			raw:  `{"title":"Hello","description":"d","date":"2024-01-15","tags":null,"content":"body"}`,
			want: []string{},
		},
		{
			name: "multiple violations in fixed order",
			raw:  `{"title":"","description":"d","date":"not-a-date","tags":[1],"content":"c"}`,
			want: []string{
				validation.MsgTitleRequired,
				validation.MsgDateInvalid,
				validation.MsgTagsNotStrings,
			},
		},
		{
			name: "everything missing",
			raw:  `{}`,
			want: []string{
				validation.MsgTitleRequired,
				validation.MsgDescRequired,
				validation.MsgDateRequired,
				validation.MsgContentRequired,
			},
		},
		{
			name: "whitespace only and wrong types",
			raw:  `{"title":"   ","description":42,"date":"2024-01-15","tags":"go","content":"\n\t"}`,
			want: []string{
				validation.MsgTitleRequired,
				validation.MsgDescRequired,
				validation.MsgTagsNotArray,
				validation.MsgContentRequired,
			},
		},
		{
			name: "impossible calendar date",
			raw:  `{"title":"t","description":"d","date":"2024-02-30","content":"c"}`,
			want: []string{validation.MsgDateInvalid},
		},
		{
			name: "date not a string",
			raw:  `{"title":"t","description":"d","date":20240101,"content":"c"}`,
			want: []string{validation.MsgDateRequired},
		},
		{
			name: "array input",
			raw:  `[1,2,3]`,
			want: []string{validation.MsgNotObject},
		},
		{
			name: "null input",
			raw:  `null`,
			want: []string{validation.MsgNotObject},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.Validate(decode(t, tt.raw))
			assert.Equal(t, len(tt.want) == 0, res.Valid)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestParse(t *testing.T) {
	post, err := validation.Parse(decode(t, `{"title":"Hello","description":"d","date":"2024-01-15","content":"body"}`))
	require.NoError(t, err)

	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "2024-01-15", post.Date)
	assert.Equal(t, "body", post.Content)
	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)
	assert.Empty(t, post.Slug)
}

func TestParse_ReturnsTypedError(t *testing.T) {
	_, err := validation.Parse(decode(t, `{"title":"t"}`))
	require.Error(t, err)

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 3)
	assert.Contains(t, err.Error(), validation.MsgContentRequired)
}

func TestParseDate(t *testing.T) {
	accepted := []string{
		"2024-01-15",
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00.123+02:00",
		"2024-01-15T10:30:00",
		"2024-01-15T10:30",
		"2024-01-15 10:30:00",
		"2024-01",
		"2024",
		"Mon, 15 Jan 2024 10:30:00 UTC",
		" 2024-01-15 ",
	}
	for _, s := range accepted {
		_, err := validation.ParseDate(s)
		assert.NoError(t, err, s)
	}

	for _, s := range []string{"", "yesterday", "2024-13-01", "15/01/2024"} {
		_, err := validation.ParseDate(s)
		assert.Error(t, err, s)
	}
}
