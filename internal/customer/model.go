package customer

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone,omitempty"`
	OrderCount int       `json:"orderCount"`
	TotalSpent int64     `json:"totalSpent"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Note is an internal remark a staff member leaves on a customer record.
type Note struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customerId"`
	StaffID    uint      `json:"staffId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EmailLogEntry records one transactional email attempt to a recipient.
type EmailLogEntry struct {
	ID        uuid.UUID `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Template  string    `json:"template"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"createdAt"`
}

type FilterInput struct {
	Search *string
}
