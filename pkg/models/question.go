package models

import "github.com/jmoiron/sqlx/types"

// Question is one entry of the exam question catalog. The catalog is
// read-only for the engine: content is an opaque JSON payload rendered by
// the client, and country/language/topic drive filtering only.
type Question struct {
	ID       int64          `json:"id" db:"id"`
	Topic    string         `json:"topic" db:"topic"`
	Country  string         `json:"country" db:"country"`
	Language string         `json:"language" db:"language"`
	Content  types.JSONText `json:"content" db:"content"`
}
