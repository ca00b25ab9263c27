package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NameKey folds a reference-data name for case-insensitive uniqueness.
func NameKey(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NameKey   string    `db:"name_key" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Category struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	NameKey           string    `db:"name_key" json:"-"`
	IsRelatedToCampus bool      `db:"is_related_to_campus" json:"is_related_to_campus"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`

	// Loaded separately, empty for categories not related to campus
	Departments []*Department `db:"-" json:"departments"`
}
