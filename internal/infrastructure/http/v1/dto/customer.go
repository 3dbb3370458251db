package dto

import (
	"stockerp/internal/core/entity"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/catalogs/customer"
)

// --- Request DTOs ---

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Code            string            `json:"code"`
	Name            string            `json:"name" binding:"required"`
	FullName        *string           `json:"fullName"`
	TaxID           *string           `json:"taxId"`
	ShippingAddress *string           `json:"shippingAddress"`
	BillingAddress  *string           `json:"billingAddress"`
	Phone           *string           `json:"phone"`
	Email           *string           `json:"email"`
	ContactPerson   *string           `json:"contactPerson"`
	CreditLimit     types.Money       `json:"creditLimit"`
	DiscountPercent types.Money       `json:"discountPercent"`
	Active          *bool             `json:"active"`
	Comment         *string           `json:"comment"`
	ParentID        *string           `json:"parentId"`
	IsFolder        bool              `json:"isFolder"`
	Attributes      entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.FullName = r.FullName
	c.TaxID = r.TaxID
	c.ShippingAddress = r.ShippingAddress
	c.BillingAddress = r.BillingAddress
	c.Phone = r.Phone
	c.Email = r.Email
	c.ContactPerson = r.ContactPerson
	c.CreditLimit = r.CreditLimit
	c.DiscountPercent = r.DiscountPercent
	if r.Active != nil {
		c.Active = *r.Active
	}
	c.Comment = r.Comment
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	c.Attributes = r.Attributes
	return c
}

// UpdateCustomerRequest is the request body for updating a customer.
type UpdateCustomerRequest struct {
	Code            string            `json:"code"`
	Name            string            `json:"name" binding:"required"`
	FullName        *string           `json:"fullName"`
	TaxID           *string           `json:"taxId"`
	ShippingAddress *string           `json:"shippingAddress"`
	BillingAddress  *string           `json:"billingAddress"`
	Phone           *string           `json:"phone"`
	Email           *string           `json:"email"`
	ContactPerson   *string           `json:"contactPerson"`
	CreditLimit     types.Money       `json:"creditLimit"`
	DiscountPercent types.Money       `json:"discountPercent"`
	Active          bool              `json:"active"`
	Comment         *string           `json:"comment"`
	ParentID        *string           `json:"parentId"`
	IsFolder        bool              `json:"isFolder"`
	Attributes      entity.Attributes `json:"attributes"`
	Version         int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = r.FullName
	c.TaxID = r.TaxID
	c.ShippingAddress = r.ShippingAddress
	c.BillingAddress = r.BillingAddress
	c.Phone = r.Phone
	c.Email = r.Email
	c.ContactPerson = r.ContactPerson
	c.CreditLimit = r.CreditLimit
	c.DiscountPercent = r.DiscountPercent
	c.Active = r.Active
	c.Comment = r.Comment
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// --- Response DTOs ---

// CustomerResponse is the response body for a customer.
type CustomerResponse struct {
	ID              string            `json:"id"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	FullName        *string           `json:"fullName,omitempty"`
	TaxID           *string           `json:"taxId,omitempty"`
	ShippingAddress *string           `json:"shippingAddress,omitempty"`
	BillingAddress  *string           `json:"billingAddress,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Email           *string           `json:"email,omitempty"`
	ContactPerson   *string           `json:"contactPerson,omitempty"`
	CreditLimit     types.Money       `json:"creditLimit"`
	DiscountPercent types.Money       `json:"discountPercent"`
	Active          bool              `json:"active"`
	Comment         *string           `json:"comment,omitempty"`
	ParentID        *string           `json:"parentId,omitempty"`
	IsFolder        bool              `json:"isFolder"`
	DeletionMark    bool              `json:"deletionMark"`
	Version         int               `json:"version"`
	Attributes      entity.Attributes `json:"attributes,omitempty"`
}

// FromCustomer creates response DTO from domain entity.
func FromCustomer(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:              c.ID.String(),
		Code:            c.Code,
		Name:            c.Name,
		FullName:        c.FullName,
		TaxID:           c.TaxID,
		ShippingAddress: c.ShippingAddress,
		BillingAddress:  c.BillingAddress,
		Phone:           c.Phone,
		Email:           c.Email,
		ContactPerson:   c.ContactPerson,
		CreditLimit:     c.CreditLimit,
		DiscountPercent: c.DiscountPercent,
		Active:          c.Active,
		Comment:         c.Comment,
		ParentID:        c.ParentID,
		IsFolder:        c.IsFolder,
		DeletionMark:    c.DeletionMark,
		Version:         c.Version,
		Attributes:      c.Attributes,
	}
}
