package dto

import (
	"stockerp/internal/core/entity"
	"stockerp/internal/domain/catalogs/supplier"
)

// --- Request DTOs ---

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	FullName         *string           `json:"fullName"`
	TaxID            *string           `json:"taxId"`
	Address          *string           `json:"address"`
	Phone            *string           `json:"phone"`
	Email            *string           `json:"email"`
	ContactPerson    *string           `json:"contactPerson"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	LeadTimeDays     int               `json:"leadTimeDays"`
	Active           *bool             `json:"active"`
	Comment          *string           `json:"comment"`
	ParentID         *string           `json:"parentId"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	s.FullName = r.FullName
	s.TaxID = r.TaxID
	s.Address = r.Address
	s.Phone = r.Phone
	s.Email = r.Email
	s.ContactPerson = r.ContactPerson
	s.PaymentTermsDays = r.PaymentTermsDays
	s.LeadTimeDays = r.LeadTimeDays
	if r.Active != nil {
		s.Active = *r.Active
	}
	s.Comment = r.Comment
	s.ParentID = r.ParentID
	s.IsFolder = r.IsFolder
	s.Attributes = r.Attributes
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	FullName         *string           `json:"fullName"`
	TaxID            *string           `json:"taxId"`
	Address          *string           `json:"address"`
	Phone            *string           `json:"phone"`
	Email            *string           `json:"email"`
	ContactPerson    *string           `json:"contactPerson"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	LeadTimeDays     int               `json:"leadTimeDays"`
	Active           bool              `json:"active"`
	Comment          *string           `json:"comment"`
	ParentID         *string           `json:"parentId"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Code = r.Code
	s.Name = r.Name
	s.FullName = r.FullName
	s.TaxID = r.TaxID
	s.Address = r.Address
	s.Phone = r.Phone
	s.Email = r.Email
	s.ContactPerson = r.ContactPerson
	s.PaymentTermsDays = r.PaymentTermsDays
	s.LeadTimeDays = r.LeadTimeDays
	s.Active = r.Active
	s.Comment = r.Comment
	s.ParentID = r.ParentID
	s.IsFolder = r.IsFolder
	s.Attributes = r.Attributes
	s.Version = r.Version
}

// --- Response DTOs ---

// SupplierResponse is the response body for a supplier.
type SupplierResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	FullName         *string           `json:"fullName,omitempty"`
	TaxID            *string           `json:"taxId,omitempty"`
	Address          *string           `json:"address,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Email            *string           `json:"email,omitempty"`
	ContactPerson    *string           `json:"contactPerson,omitempty"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	LeadTimeDays     int               `json:"leadTimeDays"`
	Active           bool              `json:"active"`
	Comment          *string           `json:"comment,omitempty"`
	ParentID         *string           `json:"parentId,omitempty"`
	IsFolder         bool              `json:"isFolder"`
	DeletionMark     bool              `json:"deletionMark"`
	Version          int               `json:"version"`
	Attributes       entity.Attributes `json:"attributes,omitempty"`
}

// FromSupplier creates response DTO from domain entity.
func FromSupplier(s *supplier.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:               s.ID.String(),
		Code:             s.Code,
		Name:             s.Name,
		FullName:         s.FullName,
		TaxID:            s.TaxID,
		Address:          s.Address,
		Phone:            s.Phone,
		Email:            s.Email,
		ContactPerson:    s.ContactPerson,
		PaymentTermsDays: s.PaymentTermsDays,
		LeadTimeDays:     s.LeadTimeDays,
		Active:           s.Active,
		Comment:          s.Comment,
		ParentID:         s.ParentID,
		IsFolder:         s.IsFolder,
		DeletionMark:     s.DeletionMark,
		Version:          s.Version,
		Attributes:       s.Attributes,
	}
}
