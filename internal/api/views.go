package api

import (
	"time"

	"shareit/internal/models"
	"shareit/internal/service"
)

// The view types fix the wire contract independently of the storage models:
// camelCase names, nested booker/item summaries and the owner-gated booking
// projections.

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type itemSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bookingView struct {
	ID     int64       `json:"id"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Status string      `json:"status"`
	Booker userSummary `json:"booker"`
	Item   itemSummary `json:"item"`
}

// bookingRef is the shortened projection embedded in item views.
type bookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

type commentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type itemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   int64         `json:"requestId,omitempty"`
	LastBooking *bookingRef   `json:"lastBooking"`
	NextBooking *bookingRef   `json:"nextBooking"`
	Comments    []commentView `json:"comments"`
}

type requestView struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Created     time.Time  `json:"created"`
	Items       []itemView `json:"items"`
}

func toUserView(u models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toBookingView(b models.Booking) bookingView {
	return bookingView{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: userSummary{ID: b.BookerID, Name: b.BookerName},
		Item:   itemSummary{ID: b.ItemID, Name: b.ItemName},
	}
}

func toBookingViews(bookings []models.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, toBookingView(b))
	}
	return views
}

func toBookingRef(b *models.Booking) *bookingRef {
	if b == nil {
		return nil
	}
	return &bookingRef{ID: b.ID, BookerID: b.BookerID}
}

func toCommentViews(comments []models.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView{
			ID:         c.ID,
			Text:       c.Text,
			AuthorName: c.AuthorName,
			Created:    c.CreatedAt,
		})
	}
	return views
}

// toItemView renders item details for a viewer. The last/next booking
// projections are the owner's alone; everyone else sees them null.
func toItemView(d service.ItemDetails, viewerID int64) itemView {
	view := itemView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Available:   d.Available,
		RequestID:   d.RequestID,
		Comments:    toCommentViews(d.Comments),
	}
	if viewerID == d.OwnerID {
		view.LastBooking = toBookingRef(d.LastBooking)
		view.NextBooking = toBookingRef(d.NextBooking)
	}
	return view
}

// toPlainItemView renders an item without projections or comments, for
// search results and request answers.
func toPlainItemView(item models.Item) itemView {
	return itemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
		Comments:    []commentView{},
	}
}

func toRequestViews(requests []models.ItemRequest) []requestView {
	views := make([]requestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, toRequestView(r))
	}
	return views
}

func toRequestView(r models.ItemRequest) requestView {
	items := make([]itemView, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, toPlainItemView(item))
	}
	return requestView{
		ID:          r.ID,
		Description: r.Description,
		Created:     r.CreatedAt,
		Items:       items,
	}
}
