// Package customer provides the Customer catalog.
// Customers are the counterparties sale orders are shipped to.
package customer

import (
	"context"
	"regexp"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Customer represents a buyer of goods.
type Customer struct {
	entity.Catalog

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the customer's tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// ShippingAddress is the default delivery address
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`

	// BillingAddress for invoices, falls back to shipping when empty
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// CreditLimit caps the customer's outstanding debt, zero means no limit
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// DiscountPercent is the default discount applied to sale lines
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// Active customers appear in sale order pickers
	Active bool `db:"active" json:"active"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Catalog:         entity.NewCatalog(code, name),
		CreditLimit:     types.ZeroMoney(),
		DiscountPercent: types.ZeroMoney(),
		Active:          true,
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}

	if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(types.NewMoney(100)) {
		return apperror.NewValidation("discount must be between 0 and 100 percent").
			WithDetail("field", "discountPercent")
	}

	return nil
}
