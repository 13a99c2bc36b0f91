package models

import "time"

// ItemRequest is a wish for an item that does not exist in the catalog yet.
// Items created in answer to a request carry its id.
type ItemRequest struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created"`
	Items       []Item    `json:"items,omitempty"`
}
