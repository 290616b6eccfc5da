package model

import "time"

// Ingredient is a canonical catalog entry, unique by lower-cased name.
type Ingredient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  *string   `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
