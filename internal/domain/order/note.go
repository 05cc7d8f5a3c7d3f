package order

import "time"

// Note is a free-text, markdown formatted entry on the order timeline.
type Note struct {
	ID        uint
	OrderID   uint
	Content   string
	CreatedAt time.Time
}
