package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Subject   *string   `db:"subject" json:"subject,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherAvailability marks one weekly grid cell a teacher cannot teach in.
// Cells without a row are available; only blocked cells are stored.
type TeacherAvailability struct {
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	Day       int    `db:"day" json:"day"`
	Slot      int    `db:"slot" json:"slot"`
	Available bool   `db:"available" json:"available"`
}
