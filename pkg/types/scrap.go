// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Scrap is one discussion thread as served by the Zenn blob endpoint
// (/api/scraps/{slug}/blob.json). The slug is not part of the record; it is
// the storage key.
type Scrap struct {
	// Title is the thread title as shown on the platform.
	Title string `json:"title" yaml:"title"`

	// Closed reports whether the author closed the thread for new comments.
	Closed bool `json:"closed" yaml:"closed"`

	// Archived reports whether the thread is archived.
	Archived bool `json:"archived" yaml:"archived"`

	// Comments holds the top-level comments in fetch (chronological) order.
	Comments []Comment `json:"comments" yaml:"comments" validate:"dive"`
}

// Comment is a node of the comment tree. Children are full comments with
// their own children; a nil or empty slice means a leaf.
type Comment struct {
	Author string `json:"author" yaml:"author"`

	// CreatedAt is an ISO-8601-like timestamp. Timestamps are compared
	// lexically and never parsed.
	CreatedAt string `json:"created_at" yaml:"created_at" validate:"required"`

	// Body is the raw markdown of the comment.
	Body string `json:"body_markdown" yaml:"body_markdown"`

	Children []Comment `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

// HasChildren reports whether the comment has at least one reply.
func (c *Comment) HasChildren() bool {
	return len(c.Children) > 0
}

// CommentCount returns the number of comments in the thread at every depth.
func (s *Scrap) CommentCount() int {
	var count func([]Comment) int
	count = func(cs []Comment) int {
		n := len(cs)
		for i := range cs {
			n += count(cs[i].Children)
		}
		return n
	}
	return count(s.Comments)
}
