package server

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot = "/"

	// Auth
	RouteLogin       = "/login"
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthRefresh = "/auth/refresh"

	RouteDashboard = "/dashboard"

	// Administración
	RouteUsers              = "/admin/usuarios"
	RouteUsersExport        = "/admin/usuarios/exportar"
	RouteUserCreate         = "/admin/usuarios/crear"
	RouteUserEdit           = "/admin/usuarios/editar/{id}"
	RouteUserDelete         = "/admin/usuarios/eliminar/{id}"
	RouteUserToggle         = "/admin/usuarios/estado/{id}"
	RouteUserPassword       = "/admin/usuarios/password/{id}"
	routeUserEditPrefix     = "/admin/usuarios/editar/"
	routeUserDeletePrefix   = "/admin/usuarios/eliminar/"
	routeUserTogglePrefix   = "/admin/usuarios/estado/"
	routeUserPasswordPrefix = "/admin/usuarios/password/"

	// Productos
	RouteProducts            = "/productos/producto"
	RouteProductsExport      = "/productos/producto/exportar"
	RouteProductDelete       = "/productos/producto/eliminar/{id}"
	RouteProductToggle       = "/productos/producto/estado/{id}"
	routeProductDeletePrefix = "/productos/producto/eliminar/"
	routeProductTogglePrefix = "/productos/producto/estado/"

	// Screens not built yet
	RouteClients = "/clients"
	RouteSales   = "/sales"
	RouteReports = "/reports"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file}"
)
