package dto

import (
	"github.com/shopspring/decimal"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/catalogs/goods"
)

// --- Request DTOs ---

// CreateGoodsRequest is the request body for creating a goods item.
type CreateGoodsRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	SKU           *string           `json:"sku"`
	Barcode       *string           `json:"barcode"`
	CategoryID    *string           `json:"categoryId"`
	UnitID        *string           `json:"unitId"`
	MinStock      types.Quantity    `json:"minStock"`
	MaxStock      types.Quantity    `json:"maxStock"`
	PurchasePrice types.Money       `json:"purchasePrice"`
	SalePrice     types.Money       `json:"salePrice"`
	Weight        decimal.Decimal   `json:"weight"`
	Description   *string           `json:"description"`
	Active        *bool             `json:"active"`
	ParentID      *string           `json:"parentId"`
	IsFolder      bool              `json:"isFolder"`
	Attributes    entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateGoodsRequest) ToEntity() *goods.Goods {
	g := goods.NewGoods(r.Code, r.Name)
	g.SKU = r.SKU
	g.Barcode = r.Barcode
	g.CategoryID = r.CategoryID
	g.UnitID = r.UnitID
	g.MinStock = r.MinStock
	g.MaxStock = r.MaxStock
	g.PurchasePrice = r.PurchasePrice
	g.SalePrice = r.SalePrice
	if !r.Weight.IsZero() {
		g.Weight = r.Weight
	}
	g.Description = r.Description
	if r.Active != nil {
		g.Active = *r.Active
	}
	g.ParentID = r.ParentID
	g.IsFolder = r.IsFolder
	g.Attributes = r.Attributes
	return g
}

// UpdateGoodsRequest is the request body for updating a goods item.
type UpdateGoodsRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	SKU           *string           `json:"sku"`
	Barcode       *string           `json:"barcode"`
	CategoryID    *string           `json:"categoryId"`
	UnitID        *string           `json:"unitId"`
	MinStock      types.Quantity    `json:"minStock"`
	MaxStock      types.Quantity    `json:"maxStock"`
	PurchasePrice types.Money       `json:"purchasePrice"`
	SalePrice     types.Money       `json:"salePrice"`
	Weight        decimal.Decimal   `json:"weight"`
	Description   *string           `json:"description"`
	Active        bool              `json:"active"`
	ParentID      *string           `json:"parentId"`
	IsFolder      bool              `json:"isFolder"`
	Attributes    entity.Attributes `json:"attributes"`
	Version       int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateGoodsRequest) ApplyTo(g *goods.Goods) {
	g.Code = r.Code
	g.Name = r.Name
	g.SKU = r.SKU
	g.Barcode = r.Barcode
	g.CategoryID = r.CategoryID
	g.UnitID = r.UnitID
	g.MinStock = r.MinStock
	g.MaxStock = r.MaxStock
	g.PurchasePrice = r.PurchasePrice
	g.SalePrice = r.SalePrice
	g.Weight = r.Weight
	g.Description = r.Description
	g.Active = r.Active
	g.ParentID = r.ParentID
	g.IsFolder = r.IsFolder
	g.Attributes = r.Attributes
	g.Version = r.Version
}

// --- Response DTOs ---

// GoodsResponse is the response body for a goods item.
type GoodsResponse struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	SKU           *string           `json:"sku,omitempty"`
	Barcode       *string           `json:"barcode,omitempty"`
	CategoryID    *string           `json:"categoryId,omitempty"`
	UnitID        *string           `json:"unitId,omitempty"`
	MinStock      types.Quantity    `json:"minStock"`
	MaxStock      types.Quantity    `json:"maxStock"`
	PurchasePrice types.Money       `json:"purchasePrice"`
	SalePrice     types.Money       `json:"salePrice"`
	Weight        decimal.Decimal   `json:"weight"`
	Description   *string           `json:"description,omitempty"`
	Active        bool              `json:"active"`
	ParentID      *string           `json:"parentId,omitempty"`
	IsFolder      bool              `json:"isFolder"`
	DeletionMark  bool              `json:"deletionMark"`
	Version       int               `json:"version"`
	Attributes    entity.Attributes `json:"attributes,omitempty"`
}

// FromGoods creates response DTO from domain entity.
func FromGoods(g *goods.Goods) *GoodsResponse {
	return &GoodsResponse{
		ID:            g.ID.String(),
		Code:          g.Code,
		Name:          g.Name,
		SKU:           g.SKU,
		Barcode:       g.Barcode,
		CategoryID:    g.CategoryID,
		UnitID:        g.UnitID,
		MinStock:      g.MinStock,
		MaxStock:      g.MaxStock,
		PurchasePrice: g.PurchasePrice,
		SalePrice:     g.SalePrice,
		Weight:        g.Weight,
		Description:   g.Description,
		Active:        g.Active,
		ParentID:      g.ParentID,
		IsFolder:      g.IsFolder,
		DeletionMark:  g.DeletionMark,
		Version:       g.Version,
		Attributes:    g.Attributes,
	}
}
