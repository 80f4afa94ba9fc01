package model

// Event is a calendar entry.
type Event struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description,omitempty"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Location      string `json:"location,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// EventRequest is the body for creating or updating an event.
type EventRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Location      string `json:"location,omitempty"`
}
