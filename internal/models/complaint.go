package models

import "time"

const (
	ComplaintOpen      = "open"
	ComplaintResolved  = "resolved"
	ComplaintDismissed = "dismissed"
)

type Complaint struct {
	ID             string     `json:"id"`
	BookingID      string     `json:"booking_id"`
	ReporterID     string     `json:"reporter_id"`
	ReporterRole   string     `json:"reporter_role"`
	Subject        string     `json:"subject"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	ResolutionNote *string    `json:"resolution_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

type PlatformStats struct {
	Users            int            `json:"users"`
	Workers          int            `json:"workers"`
	BlockedWorkers   int            `json:"blocked_workers"`
	BookingsByStatus map[string]int `json:"bookings_by_status"`
	OpenComplaints   int            `json:"open_complaints"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
