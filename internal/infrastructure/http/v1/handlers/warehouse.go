package handlers

import (
	"stockerp/internal/domain/catalogs/warehouse"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// WarehouseHTTPHandler binds the generic catalog handler to warehouses.
type WarehouseHTTPHandler = CatalogHandler[
	*warehouse.Warehouse,
	dto.CreateWarehouseRequest,
	dto.UpdateWarehouseRequest,
]

// NewWarehouseHandler wires the generic catalog handler with warehouse mappers.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*warehouse.Warehouse,
		dto.CreateWarehouseRequest,
		dto.UpdateWarehouseRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "warehouse",
		ToEntity: func(req dto.CreateWarehouseRequest) *warehouse.Warehouse {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateWarehouseRequest, existing *warehouse.Warehouse) *warehouse.Warehouse {
			req.ApplyTo(existing)
			return existing
		},
		ToDTO: func(w *warehouse.Warehouse) any {
			return dto.FromWarehouse(w)
		},
	})
}
