package domain

import "time"

// Villa is the identity and pricing unit for bookings. Richer attributes and
// villa CRUD live outside this service; the core reads identity and price.
type Villa struct {
	ID                 int64
	Name               string
	Address            string
	PricePerNightPaise int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
