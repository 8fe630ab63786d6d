package service

import "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"

// MenuItem is a single sidebar navigation entry in the admin portal.
type MenuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

var (
	menuDashboard    = MenuItem{Key: "dashboard", Label: "Dashboard", Path: "/admin", Icon: "layout-dashboard"}
	menuApplications = MenuItem{Key: "applications", Label: "Applications", Path: "/admin/applications", Icon: "clipboard-list"}
	menuVolunteers   = MenuItem{Key: "volunteers", Label: "Volunteers", Path: "/admin/volunteers", Icon: "heart-handshake"}
	menuDocuments    = MenuItem{Key: "documents", Label: "Documents", Path: "/admin/documents", Icon: "folder-open"}
	menuUsers        = MenuItem{Key: "users", Label: "User Management", Path: "/admin/users", Icon: "users"}
	menuReports      = MenuItem{Key: "reports", Label: "Reports", Path: "/admin/reports", Icon: "bar-chart"}
	menuSettings     = MenuItem{Key: "settings", Label: "Settings", Path: "/admin/settings", Icon: "settings"}
)

// roleMenus maps each non-admin role to its ordered sidebar entries. The
// admin menu is not listed here: it is always the de-duplicated union of
// every role's items plus the admin-only entries.
var roleMenus = map[models.UserRole][]MenuItem{
	models.RoleManager: {
		menuDashboard,
		menuApplications,
		menuVolunteers,
		menuDocuments,
		menuReports,
	},
	models.RoleCaseWorker: {
		menuDashboard,
		menuApplications,
		menuVolunteers,
	},
	models.RoleViewer: {
		menuDashboard,
		menuReports,
	},
}

var adminOnlyMenus = []MenuItem{
	menuUsers,
	menuSettings,
}

// adminMenuOrder fixes the composition order for the admin union so the
// result is stable regardless of map iteration.
var adminMenuOrder = []models.UserRole{
	models.RoleManager,
	models.RoleCaseWorker,
	models.RoleViewer,
}

// MenuForRole returns the ordered sidebar menu for a role. Admins receive
// the union of all role menus, de-duplicated by key in first-seen order,
// followed by the admin-only entries.
func MenuForRole(role models.UserRole) []MenuItem {
	if role != models.RoleAdmin {
		items := roleMenus[role]
		out := make([]MenuItem, len(items))
		copy(out, items)
		return out
	}

	seen := make(map[string]bool)
	var out []MenuItem
	for _, r := range adminMenuOrder {
		for _, item := range roleMenus[r] {
			if seen[item.Key] {
				continue
			}
			seen[item.Key] = true
			out = append(out, item)
		}
	}
	for _, item := range adminOnlyMenus {
		if !seen[item.Key] {
			seen[item.Key] = true
			out = append(out, item)
		}
	}
	return out
}

// MenuForRequest resolves the menu for an authenticated role, honoring an
// optional perspective switch. Only admins may borrow another role's view;
// everyone else gets their own menu regardless of the parameter.
func MenuForRequest(role models.UserRole, perspective string) []MenuItem {
	if perspective != "" && role == models.RoleAdmin {
		p := models.UserRole(perspective)
		if p.Valid() {
			return MenuForRole(p)
		}
	}
	return MenuForRole(role)
}
