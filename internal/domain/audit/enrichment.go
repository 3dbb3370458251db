package audit

import (
	"context"

	appctx "stockerp/internal/core/context"
)

// EnrichCreatedByDirect stamps CreatedBy and UpdatedBy with the
// authenticated user from the request context. No-op when the context
// carries no user.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect stamps only UpdatedBy.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
