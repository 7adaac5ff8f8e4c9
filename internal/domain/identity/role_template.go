package identity

// RoleTemplate bundles a named set of permission keys that can be applied to
// a membership in one step.
type RoleTemplate struct {
	Name        string
	Description string
	Permissions []PermissionKey
}

var roleTemplates = map[string]RoleTemplate{
	"inventory_manager": {
		Name:        "inventory_manager",
		Description: "Full stock control and adjustment history",
		Permissions: []PermissionKey{
			PermInventoryAdjust,
			PermInventoryRestock,
			PermInventoryViewHistory,
			PermProductUpdate,
			PermActivityView,
		},
	},
	"order_fulfillment": {
		Name:        "order_fulfillment",
		Description: "Order processing from payment through delivery",
		Permissions: []PermissionKey{
			PermOrderRead,
			PermOrderCreate,
			PermOrderUpdateStatus,
			PermCustomerManage,
			PermActivityView,
		},
	},
	"support_agent": {
		Name:        "support_agent",
		Description: "Read access to orders and customer chat",
		Permissions: []PermissionKey{
			PermOrderRead,
			PermChatView,
			PermChatSend,
			PermCustomerManage,
		},
	},
	"catalog_editor": {
		Name:        "catalog_editor",
		Description: "Product and category maintenance including bulk import",
		Permissions: []PermissionKey{
			PermProductCreate,
			PermProductUpdate,
			PermProductImport,
			PermCategoryManage,
		},
	},
}

// GetRoleTemplate looks up a template by name
func GetRoleTemplate(name string) (RoleTemplate, bool) {
	tmpl, ok := roleTemplates[name]
	return tmpl, ok
}

// ListRoleTemplates returns all known templates
func ListRoleTemplates() []RoleTemplate {
	out := make([]RoleTemplate, 0, len(roleTemplates))
	for _, tmpl := range roleTemplates {
		out = append(out, tmpl)
	}
	return out
}
