package models

import "time"

// Class represents one class group (e.g. 9-A) that receives a weekly timetable.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     int       `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter captures filtering options for listing classes.
type ClassFilter struct {
	Search    string
	Grade     *int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
