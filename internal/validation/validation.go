// Package validation enforces the shape of a post submission.
package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/example/blog-publisher/internal/models"
)

// Error messages, reported in this order.
const (
	MsgNotObject       = "Post data must be an object"
	MsgTitleRequired   = "Title is required and must be a non-empty string"
	MsgDescRequired    = "Description is required and must be a non-empty string"
	MsgDateRequired    = "Date is required and must be a valid ISO date string"
	MsgDateInvalid     = "Date must be a valid ISO date string (YYYY-MM-DD)"
	MsgTagsNotArray    = "Tags must be an array"
	MsgTagsNotStrings  = "All tags must be strings"
	MsgContentRequired = "Content is required and must be a non-empty string"

	// MsgTitleNoSlug is reported when a title has nothing to derive a slug from.
	MsgTitleNoSlug = "Title must contain at least one letter or digit"
)

var errUnparseableDate = errors.New("unparseable date")

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Result is the outcome of Validate.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Error carries every rule violation of a rejected submission.
type Error struct {
	Errors []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Validate checks input against every field rule and collects all violations.
func Validate(input any) Result {
	fields, ok := input.(map[string]any)
	if !ok || fields == nil {
		return Result{Valid: false, Errors: []string{MsgNotObject}}
	}

	errs := make([]string, 0)
	if _, ok := nonBlank(fields["title"]); !ok {
		errs = append(errs, MsgTitleRequired)
	}
	if _, ok := nonBlank(fields["description"]); !ok {
		errs = append(errs, MsgDescRequired)
	}
	if date, ok := nonBlank(fields["date"]); !ok {
		errs = append(errs, MsgDateRequired)
	} else if _, err := ParseDate(date); err != nil {
		errs = append(errs, MsgDateInvalid)
	}
	if _, msg := tags(fields["tags"]); msg != "" {
		errs = append(errs, msg)
	}
	if _, ok := nonBlank(fields["content"]); !ok {
		errs = append(errs, MsgContentRequired)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Parse validates input and returns the typed post, or an *Error listing every violation.
// The returned post has no slug; tags default to an empty slice.
func Parse(input any) (models.Post, error) {
	res := Validate(input)
	if !res.Valid {
		return models.Post{}, &Error{Errors: res.Errors}
	}

	fields := input.(map[string]any)
	tagList, _ := tags(fields["tags"])
	return models.Post{
		PostMeta: models.PostMeta{
			Title:       fields["title"].(string),
			Description: fields["description"].(string),
			Date:        fields["date"].(string),
			Tags:        tagList,
		},
		Content: fields["content"].(string),
	}, nil
}

// ParseDate parses the calendar date formats a post may carry.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnparseableDate
}

func nonBlank(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// tags returns the tag list, or the message for the rule it breaks. Absent or null means none.
func tags(v any) ([]string, string) {
	switch list := v.(type) {
	case nil:
		return []string{}, ""
	case []string:
		return append([]string{}, list...), ""
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, MsgTagsNotStrings
			}
			out = append(out, s)
		}
		return out, ""
	default:
		return nil, MsgTagsNotArray
	}
}
