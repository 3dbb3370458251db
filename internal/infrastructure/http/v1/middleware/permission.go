// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
)

// adminOrUser aborts unauthenticated requests. It returns (true, _) when the
// request may proceed unconditionally (admin), and ok=false when aborted.
func adminOrUser(c *gin.Context) (admin, ok bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		_ = c.Error(apperror.NewUnauthorized("authentication required"))
		c.Abort()
		return false, false
	}
	return user.IsAdmin, true
}

func forbid(c *gin.Context, detailKey string, detailVal any) {
	_ = c.Error(
		apperror.NewForbidden("insufficient permissions").
			WithDetail(detailKey, detailVal),
	)
	c.Abort()
}

// RequirePermission checks that the user holds the given permission.
// Admins implicitly hold every permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminOrUser(c)
		if !ok {
			return
		}

		if !admin && !slices.Contains(getUserPermissions(c), permission) {
			forbid(c, "required_permission", permission)
			return
		}
		c.Next()
	}
}

// RequireAnyPermission passes when the user holds at least one of the
// listed permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminOrUser(c)
		if !ok {
			return
		}
		if admin {
			c.Next()
			return
		}

		userPerms := getUserPermissions(c)
		for _, required := range permissions {
			if slices.Contains(userPerms, required) {
				c.Next()
				return
			}
		}
		forbid(c, "required_permissions", permissions)
	}
}

// RequireAllPermissions passes only when the user holds every listed
// permission; the error names the ones missing.
func RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminOrUser(c)
		if !ok {
			return
		}
		if admin {
			c.Next()
			return
		}

		held := make(map[string]bool)
		for _, p := range getUserPermissions(c) {
			held[p] = true
		}

		var missing []string
		for _, required := range permissions {
			if !held[required] {
				missing = append(missing, required)
			}
		}
		if len(missing) > 0 {
			forbid(c, "missing_permissions", missing)
			return
		}
		c.Next()
	}
}

// getUserPermissions reads the permission codes the Auth middleware stored
// in the gin context from the JWT claims.
func getUserPermissions(c *gin.Context) []string {
	if perms, exists := c.Get("permissions"); exists {
		if p, ok := perms.([]string); ok {
			return p
		}
	}
	return nil
}
