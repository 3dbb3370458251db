// Package supplier provides the Supplier catalog.
// Suppliers are the counterparties purchase orders are placed with.
package supplier

import (
	"context"
	"regexp"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
)

var (
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	whitespaceRE = regexp.MustCompile(`\s`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
)

// Supplier represents a vendor of goods.
type Supplier struct {
	entity.Catalog

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the supplier's tax identification number, unique when set
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Address is the registered address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// PaymentTermsDays is the agreed invoice due period
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// LeadTimeDays is the typical delivery time for planning
	LeadTimeDays int `db:"lead_time_days" json:"leadTimeDays"`

	// Active suppliers appear in purchase order pickers
	Active bool `db:"active" json:"active"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.TaxID != nil && *s.TaxID != "" {
		if err := validateTaxID(*s.TaxID); err != nil {
			return err
		}
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if s.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}
	if s.LeadTimeDays < 0 {
		return apperror.NewValidation("lead time cannot be negative").
			WithDetail("field", "leadTimeDays")
	}

	return nil
}

func validateTaxID(taxID string) error {
	cleaned := whitespaceRE.ReplaceAllString(taxID, "")
	if !digitsOnlyRE.MatchString(cleaned) {
		return apperror.NewValidation("tax ID must contain only digits").
			WithDetail("field", "taxId")
	}
	if len(cleaned) < 8 || len(cleaned) > 15 {
		return apperror.NewValidation("tax ID must be 8 to 15 digits").
			WithDetail("field", "taxId")
	}
	return nil
}
