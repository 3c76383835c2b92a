// Package structs defines the comment data shapes.
package structs

import "time"

// Comment is one remark on a todo. Comments have no tenant column of
// their own; ownership is checked through the parent todo.
type Comment struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todo_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest carries the body of a new comment.
type CreateCommentRequest struct {
	Body string `json:"body"`
}
