package auth_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain/auth"
	"stockerp/internal/infrastructure/storage/postgres"
)

const permissionSelect = `
	SELECT id, code, name, description, resource, action, created_at
	FROM permissions
`

// PermissionRepo implements auth.PermissionRepository. Permissions are
// seeded reference data; the repo only reads them.
type PermissionRepo struct {
	txManager *postgres.TxManager
}

// NewPermissionRepo creates a new permission repository.
func NewPermissionRepo(txm tx.Manager) *PermissionRepo {
	return &PermissionRepo{txManager: postgres.AsTxManager(txm)}
}

// GetByCode retrieves a permission by code.
func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*auth.Permission, error) {
	var perm auth.Permission
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &perm, permissionSelect+` WHERE code = $1`, code)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("permission", code)
		}
		return nil, fmt.Errorf("query permission: %w", err)
	}
	return &perm, nil
}

// List retrieves all permissions.
func (r *PermissionRepo) List(ctx context.Context) ([]auth.Permission, error) {
	return r.list(ctx, permissionSelect+` ORDER BY resource, action`)
}

// ListByResource retrieves permissions for a resource.
func (r *PermissionRepo) ListByResource(ctx context.Context, resource string) ([]auth.Permission, error) {
	return r.list(ctx, permissionSelect+` WHERE resource = $1 ORDER BY action`, resource)
}

func (r *PermissionRepo) list(ctx context.Context, query string, args ...any) ([]auth.Permission, error) {
	var permissions []auth.Permission
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &permissions, query, args...); err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	return permissions, nil
}

var _ auth.PermissionRepository = (*PermissionRepo)(nil)
