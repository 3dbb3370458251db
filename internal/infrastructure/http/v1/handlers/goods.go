package handlers

import (
	"stockerp/internal/domain/catalogs/goods"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// GoodsHTTPHandler binds the generic catalog handler to goods.
type GoodsHTTPHandler = CatalogHandler[
	*goods.Goods,
	dto.CreateGoodsRequest,
	dto.UpdateGoodsRequest,
]

// NewGoodsHandler wires the generic catalog handler with goods mappers.
func NewGoodsHandler(
	base *BaseHandler,
	service *goods.Service,
) *GoodsHTTPHandler {
	config := CatalogHandlerConfig[
		*goods.Goods,
		dto.CreateGoodsRequest,
		dto.UpdateGoodsRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "goods",

		ToEntity: func(req dto.CreateGoodsRequest) *goods.Goods {
			return req.ToEntity()
		},

		ApplyUpdate: func(req dto.UpdateGoodsRequest, existing *goods.Goods) *goods.Goods {
			req.ApplyTo(existing)
			return existing
		},

		ToDTO: func(entity *goods.Goods) any {
			return dto.FromGoods(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
