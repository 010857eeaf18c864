package models

// PostMeta is everything the catalog exposes about a post except its body.
type PostMeta struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	ReadingTime string   `json:"readingTime,omitempty"`
	WordCount   int      `json:"wordCount,omitempty"`
}

// Post is a validated post. Slug and ReadingTime are derived, never submitted.
type Post struct {
	PostMeta
	Content string `json:"content"`
}

// Meta returns a copy of the post without its body.
func (p *Post) Meta() PostMeta {
	m := p.PostMeta
	m.Tags = append([]string{}, p.Tags...)
	return m
}
