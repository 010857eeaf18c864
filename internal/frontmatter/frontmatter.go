// Package frontmatter renders and parses the post record format: a YAML
// header between "---" lines followed by the MDX body.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/blog-publisher/internal/models"
)

const delimiter = "---"

var (
	// ErrMissingHeader means the record does not open with a delimiter line.
	ErrMissingHeader = errors.New("frontmatter: missing opening delimiter")
	// ErrUnterminatedHeader means the closing delimiter line was never found.
	ErrUnterminatedHeader = errors.New("frontmatter: missing closing delimiter")
)

// Document is a parsed record.
type Document struct {
	Fields map[string]any
	Body   string
}

// Format renders p as a record. Scalars are emitted as JSON strings and tags
// as a JSON array, both of which are valid YAML flow values.
func Format(p models.Post) string {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	var b strings.Builder
	b.WriteString(delimiter + "\n")
	fmt.Fprintf(&b, "title: %s\n", encode(p.Title))
	fmt.Fprintf(&b, "description: %s\n", encode(p.Description))
	fmt.Fprintf(&b, "date: %s\n", encode(p.Date))
	fmt.Fprintf(&b, "tags: %s\n", encode(tags))
	b.WriteString(delimiter + "\n\n")
	b.WriteString(p.Content)
	return b.String()
}

func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// strings and string slices always encode
	_ = enc.Encode(v)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Parse splits data into header fields and body. Delimiter lines may end in
// CRLF. The body is returned byte for byte, minus the blank line Format writes
// after the closing delimiter.
func Parse(data []byte) (*Document, error) {
	text := string(data)

	first, rest, found := strings.Cut(text, "\n")
	if !isDelimiter(first) {
		return nil, ErrMissingHeader
	}
	if !found {
		return nil, ErrUnterminatedHeader
	}

	header, body, ok := splitHeader(rest)
	if !ok {
		return nil, ErrUnterminatedHeader
	}

	fields := map[string]any{}
	header = strings.ReplaceAll(header, "\r\n", "\n")
	if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
		return nil, fmt.Errorf("frontmatter: decode header: %w", err)
	}

	switch {
	case strings.HasPrefix(body, "\n"):
		body = body[1:]
	case strings.HasPrefix(body, "\r\n"):
		body = body[2:]
	}
	return &Document{Fields: fields, Body: body}, nil
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == delimiter
}

// splitHeader finds the closing delimiter line in s.
func splitHeader(s string) (header, body string, ok bool) {
	offset := 0
	for offset <= len(s) {
		line, _, _ := strings.Cut(s[offset:], "\n")
		next := offset + len(line) + 1
		if isDelimiter(line) {
			if next > len(s) {
				return s[:offset], "", true
			}
			return s[:offset], s[next:], true
		}
		if next > len(s) {
			break
		}
		offset = next
	}
	return "", "", false
}

// Merge returns the header fields plus the body under "content", the shape
// the validator expects.
func (d *Document) Merge() map[string]any {
	out := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["content"] = d.Body
	return out
}
