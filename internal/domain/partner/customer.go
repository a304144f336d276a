package partner

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
)

// Customer is the buyer a bill may be attributed to
type Customer struct {
	shared.TenantAggregateRoot
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}, nil
}

// SetContact sets phone and email
func (c *Customer) SetContact(phone, email string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
		}
	}
	c.Phone = phone
	c.Email = email
	c.Touch()
	return nil
}

// SetAddress sets the postal address
func (c *Customer) SetAddress(address string) {
	c.Address = address
	c.Touch()
}
