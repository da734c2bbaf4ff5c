// package models defines the data model for the genre playlist organizer
package models

import (
	"time"
)

// Model is a persisted record. Only run history is persisted; library data is always fetched live.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // checked before every write
}

// Repository is the CRUD surface of a store for one [Model] type.
//
// Get and List skip soft-deleted records; Delete soft-deletes.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
