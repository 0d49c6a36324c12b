package domain

const (
	RouteAuth           = "/auth"
	RouteAdminHome      = "/"
	RoutePatientHome    = "/patient"
	RouteSuperadminHome = "/superadmin"
)

// LandingRoute returns where a principal with the given role is sent
// after login or when it wanders into another role's pages. Both the
// login redirect and the role guard go through this table.
func LandingRoute(r Role) string {
	switch r {
	case RoleSuperadmin:
		return RouteSuperadminHome
	case RoleAdmin:
		return RouteAdminHome
	case RolePatient:
		return RoutePatientHome
	default:
		return RouteAuth
	}
}
