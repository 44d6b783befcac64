package apimodel

import "net/url"

// Route path constants
// All task API paths are defined here so the client and the fake API agree
const (
	// Auth Routes
	RouteLogin        = "/users/login"
	RouteRegister     = "/users/register"
	RouteRefreshToken = "/users/refresh-token"

	// Task Routes
	RouteTasks = "/tasks"
	RouteTask  = "/tasks/:id" // echo style parameter, see TaskPath
)

// TaskPath returns the path of a single task.
func TaskPath(id string) string {
	return RouteTasks + "/" + url.PathEscape(id)
}
