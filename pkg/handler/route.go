package handler

// Route type
type Route string

const (
	// RouteSave persist a new entity
	RouteSave Route = "save"
	// RouteUpdate replace a stored entity
	RouteUpdate Route = "update"
	// RouteGet fetch one entity by key
	RouteGet Route = "get"
	// RouteGetAll fetch all stored entities
	RouteGetAll Route = "getAll"
	// RouteDelete remove one entity by key
	RouteDelete Route = "delete"
	// RouteExists check whether a key is stored
	RouteExists Route = "exists"
	// RouteCount number of stored entities
	RouteCount Route = "count"
	// RouteStats store statistics
	RouteStats Route = "stats"
)
