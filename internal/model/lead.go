package model

import "time"

// Lead is a prospected business discovered by a radar search
type Lead struct {
	ID           string    `json:"id" yaml:"id" db:"id"`
	Name         string    `json:"name" yaml:"name" db:"name"`
	Address      *string   `json:"address,omitempty" yaml:"address,omitempty" db:"address"`
	Phone        *string   `json:"phone,omitempty" yaml:"phone,omitempty" db:"phone"`
	Rating       *float64  `json:"rating,omitempty" yaml:"rating,omitempty" db:"rating"`
	SourceQuery  string    `json:"source_query" yaml:"source_query" db:"source_query"` // Discovery query, e.g. "pizzeria in Passos, MG"
	PlaceID      *string   `json:"place_id,omitempty" yaml:"place_id,omitempty" db:"place_id"`
	DiscoveredAt time.Time `json:"discovered_at" yaml:"discovered_at" db:"discovered_at"`
}

// Business is a raw search hit before it becomes a Lead.
// Rating stays untyped because search providers disagree on its format.
type Business struct {
	Name    string       `json:"name" yaml:"name"`
	Address string       `json:"address,omitempty" yaml:"address,omitempty"`
	Phone   string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	Rating  any          `json:"rating,omitempty" yaml:"rating,omitempty"`
	PlaceID string       `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	Intel   []IntelInput `json:"intel,omitempty" yaml:"intel,omitempty"`
}

// IntelInput is one competitor observation attached to a business in an import file
type IntelInput struct {
	CompetitorName string `json:"competitor_name,omitempty" yaml:"competitor_name,omitempty"`
	Observation    `yaml:",inline"`
}

// ImportFile is the on-disk format consumed by the import command
type ImportFile struct {
	SourceQuery string     `json:"source_query" yaml:"source_query" validate:"required"`
	Businesses  []Business `json:"businesses" yaml:"businesses" validate:"required,min=1,dive"`
}
