package models

import "time"

// CachedAttribute is a persisted resolution-cache entry. Key is whichever
// lookup key succeeded: "set:CODE/NUM" for exact lookups, "name:FRONTFACE"
// for fuzzy ones. Rows are written once per key and only read afterwards.
type CachedAttribute struct {
	Key        string    `json:"key" gorm:"primaryKey"`
	Color      Color     `json:"color" gorm:"not null"`
	Rarity     Rarity    `json:"rarity"`
	ImageURL   string    `json:"image_url"`
	OracleName string    `json:"oracle_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SetMapping is one row of the synced set reference table: a display-name
// variant mapped to its Scryfall set code. Manual overrides are stored with
// Manual=true and win over synced rows.
type SetMapping struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"not null;index"`
	Manual    bool      `json:"manual"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
