package models

// Course is a named academic program, unique by name. Documents and users
// reference it as an optional classification.
type Course struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
