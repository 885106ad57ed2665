package domain

import "time"

// Magazine represents a catalog item users can subscribe to.
// Price is stored in minor currency units (cents).
type Magazine struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	Price     int        `json:"price"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted returns true if the magazine has been soft-deleted.
func (m *Magazine) IsDeleted() bool {
	return m.DeletedAt != nil
}

// MagazineWithEntitlement is a catalog entry annotated with whether the
// requesting user currently holds an active subscription to it.
type MagazineWithEntitlement struct {
	MagazineID string `json:"magazine_id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Price      int    `json:"price"`
	Entitled   bool   `json:"entitled"`
}
