package models

// Event is a named occasion (conference, symposium) with a unique short
// code such as "LATS".
type Event struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}
