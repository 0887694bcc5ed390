package model

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EventSummary is a read-only projection of server state. Only IsParticipating
// is ever set locally; it stays nil until the catalog annotates it.
type EventSummary struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	EventDate        LocalTime `json:"eventDate"`
	Location         string    `json:"location,omitempty"`
	Category         *Category `json:"category,omitempty"`
	Capacity         *int      `json:"capacity,omitempty"`
	ParticipantCount int       `json:"participantCount"`
	Creator          *Identity `json:"creator,omitempty"`
	IsParticipating  *bool     `json:"isParticipating,omitempty"`
}

// EditSession is create mode when EventID is zero, otherwise update mode
// bound to that event.
type EditSession struct {
	EventID int64
}

func (e EditSession) Editing() bool {
	return e.EventID != 0
}

// EventForm holds the editor's input values as typed by the user.
type EventForm struct {
	Title       string
	Description string
	EventDate   string // YYYY-MM-DDTHH:MM, no zone
	Location    string
	CategoryID  string
	Capacity    string
}

// EventFormFields lists the editor form fields that can carry validation marks.
var EventFormFields = []string{"title", "description", "eventDate", "location", "categoryId", "capacity"}

// EventInput is the create/update request body.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   string `json:"eventDate"`
	Location    string `json:"location"`
	CategoryID  *int64 `json:"categoryId"`
	Capacity    *int   `json:"capacity"`
}

// Participation statuses reported by the backend.
const (
	StatusConfirmed = "CONFIRMED"
	StatusWaiting   = "WAITING"
	StatusCancelled = "CANCELLED"
)

type ParticipationRes struct {
	Status string `json:"status"`
}

type Participation struct {
	ID             int64     `json:"id,omitempty"`
	EventID        int64     `json:"eventId,omitempty"`
	EventTitle     string    `json:"eventTitle"`
	Status         string    `json:"status"`
	ParticipatedAt LocalTime `json:"participatedAt"`
}

// FieldErrorSet maps a form field name to its validation message.
type FieldErrorSet map[string]string
