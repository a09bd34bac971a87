package invoicing

import (
	"context"
	"time"
)

// Buyer is a tenant's registered buyer. Invoices snapshot buyer fields at
// creation time rather than referencing this record.
type Buyer struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	BusinessName     string
	NTNCNIC          string
	Province         string
	Address          string
	RegistrationType string
}

// BuyerRepository defines persistence operations for buyers within one
// tenant's database.
type BuyerRepository interface {
	FindByID(ctx context.Context, id uint64) (*Buyer, error)
	FindAll(ctx context.Context) ([]Buyer, error)
	Save(ctx context.Context, b *Buyer) error
	Update(ctx context.Context, b *Buyer) error
	Delete(ctx context.Context, id uint64) error
}
