package handlers

import (
	"stockerp/internal/domain/catalogs/unit"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler binds the generic catalog handler to units of measure.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler wires the generic catalog handler with unit mappers.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "unit",
		ToEntity: func(req dto.CreateUnitRequest) *unit.Unit {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},
		ToDTO: func(u *unit.Unit) any {
			return dto.FromUnit(u)
		},
	})
}
