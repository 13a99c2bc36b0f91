package models

import "time"

// Comment is feedback left by a booker after a stay that has started.
type Comment struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created"`
}
