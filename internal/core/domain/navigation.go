package domain

// NavItem is one entry of a role's sidebar.
type NavItem struct {
	Label string
	Path  string
}

var navigation = map[Role][]NavItem{
	RoleAdmin: {
		{"Dashboard", "/"},
		{"Pacientes", "/patients"},
		{"Planes Nutricionales", "/meal-plans"},
		{"Recetas", "/recipes"},
		{"Menú semanal", "/weekly-menus"},
		{"Consultas", "/appointments"},
		{"Progreso", "/progress"},
		{"Mensajes", "/messages"},
		{"Configuración", "/settings"},
	},
	RolePatient: {
		{"Mi Dashboard", "/patient"},
		{"Mi Plan Nutricional", "/patient/my-plan"},
		{"Mis Comidas", "/patient/meals"},
		{"Mi Progreso", "/patient/progress"},
		{"Mis Citas", "/patient/appointments"},
		{"Mensajes", "/patient/messages"},
		{"Mi Perfil", "/patient/profile"},
		{"Configuración", "/patient/settings"},
	},
	RoleSuperadmin: {
		{"Dashboard", "/superadmin"},
		{"Usuarios", "/superadmin/users"},
		{"Nutricionistas", "/superadmin/nutritionists"},
		{"Organizaciones", "/superadmin/organizations"},
		{"Facturación", "/superadmin/billing"},
		{"Configuración", "/superadmin/settings"},
	},
}

// Navigation returns the sidebar of a role. The first entry is always the
// role's landing route. Unknown roles get nothing.
func Navigation(r Role) []NavItem {
	items := navigation[r]
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}
