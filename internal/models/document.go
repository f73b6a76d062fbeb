package models

import "time"

// Document is the aggregate root of the portal: an academic work with its
// owned authors and keywords plus non-owning references to course, event
// and advisor. Documents are append-only from the API's perspective.
type Document struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Abstract     *string   `db:"abstract" json:"abstract,omitempty"`
	Type         string    `db:"type" json:"type"`
	Field        *string   `db:"field" json:"field,omitempty"`
	PublishYear  int       `db:"publish_year" json:"publish_year"`
	EventID      *int64    `db:"event_id" json:"event_id,omitempty"`
	CourseID     *int64    `db:"course_id" json:"course_id,omitempty"`
	AdvisorID    *int64    `db:"advisor_id" json:"advisor_id,omitempty"`
	AdvisorName  *string   `db:"advisor_name" json:"advisor_name,omitempty"`
	AdvisorEmail *string   `db:"advisor_email" json:"advisor_email,omitempty"`
	FileURL      string    `db:"file_url" json:"file_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Event    *Event            `db:"-" json:"event,omitempty"`
	Course   *Course           `db:"-" json:"course,omitempty"`
	Advisor  *UserInfo         `db:"-" json:"advisor,omitempty"`
	Authors  []DocumentAuthor  `db:"-" json:"authors"`
	Keywords []DocumentKeyword `db:"-" json:"keywords"`
}

// DocumentAuthor is an owned child of Document, removed with its parent.
type DocumentAuthor struct {
	ID         int64   `db:"id" json:"id"`
	DocumentID int64   `db:"document_id" json:"-"`
	Name       string  `db:"name" json:"name"`
	Email      *string `db:"email" json:"email,omitempty"`
}

// DocumentKeyword is an owned child of Document. Keyword strings are not
// deduplicated at write time; the global listing surfaces distinct texts.
type DocumentKeyword struct {
	ID         int64  `db:"id" json:"id"`
	DocumentID int64  `db:"document_id" json:"-"`
	Keyword    string `db:"keyword" json:"keyword"`
}

// DocumentFilter captures the optional, independently composable search
// dimensions. Dimensions combine with AND; values within one dimension
// combine with OR.
type DocumentFilter struct {
	Query        string
	Types        []string
	PublishYears []int
	Fields       []string
	Keywords     []string
	EventIDs     []int64
	Limit        int
	Offset       int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}
