package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

func menuKeys(items []MenuItem) []string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys
}

func TestMenuForRoleCaseWorker(t *testing.T) {
	menu := MenuForRole(models.RoleCaseWorker)
	assert.Equal(t, []string{"dashboard", "applications", "volunteers"}, menuKeys(menu))
}

func TestMenuForRoleAdminIsDedupedUnion(t *testing.T) {
	menu := MenuForRole(models.RoleAdmin)
	keys := menuKeys(menu)

	seen := make(map[string]int)
	for _, k := range keys {
		seen[k]++
	}
	for key, count := range seen {
		require.Equal(t, 1, count, "menu key %q appears %d times", key, count)
	}

	// Union of every role's items plus admin-only entries, first-seen order.
	assert.Equal(t, []string{"dashboard", "applications", "volunteers", "documents", "reports", "users", "settings"}, keys)
}

func TestMenuForRoleAdminContainsEveryRoleItem(t *testing.T) {
	admin := menuKeys(MenuForRole(models.RoleAdmin))
	adminSet := make(map[string]bool, len(admin))
	for _, k := range admin {
		adminSet[k] = true
	}

	for _, role := range []models.UserRole{models.RoleManager, models.RoleCaseWorker, models.RoleViewer} {
		for _, k := range menuKeys(MenuForRole(role)) {
			assert.True(t, adminSet[k], "admin menu missing %q from role %s", k, role)
		}
	}
}

func TestMenuForRequestPerspective(t *testing.T) {
	// Admin can preview another role's menu.
	asViewer := MenuForRequest(models.RoleAdmin, "viewer")
	assert.Equal(t, menuKeys(MenuForRole(models.RoleViewer)), menuKeys(asViewer))

	// Non-admins always get their own menu.
	own := MenuForRequest(models.RoleCaseWorker, "admin")
	assert.Equal(t, menuKeys(MenuForRole(models.RoleCaseWorker)), menuKeys(own))

	// Invalid perspectives fall back to the caller's role.
	fallback := MenuForRequest(models.RoleAdmin, "superuser")
	assert.Equal(t, menuKeys(MenuForRole(models.RoleAdmin)), menuKeys(fallback))
}

func TestMenuForUnknownRoleIsEmpty(t *testing.T) {
	assert.Empty(t, MenuForRole(models.UserRole("intern")))
}
