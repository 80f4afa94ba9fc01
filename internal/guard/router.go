package guard

import (
	"fmt"
	"strings"
)

// Routes known to the application.
const (
	RouteLogin         = "/auth/login"
	RouteRegister      = "/auth/register"
	RouteRoot          = "/"
	RouteDashboard     = "/dashboard"
	RouteHabits        = "/habits"
	RouteGoals         = "/goals"
	RouteEvents        = "/events"
	RouteTasks         = "/tasks"
	RouteDiary         = "/diary"
	RouteNotifications = "/notifications"
	RouteUsers         = "/admin/users"
)

// maxHops bounds how many redirects Resolve follows.
const maxHops = 8

// Router maps each route to its guard chain.
type Router struct {
	chains map[string][]Guard
}

// NewRouter builds the route table. Every view except the two auth pages
// requires auth; the user admin page additionally requires admin.
func NewRouter(auth, admin Guard) *Router {
	protected := []Guard{auth}
	return &Router{
		chains: map[string][]Guard{
			RouteLogin:         nil,
			RouteRegister:      nil,
			RouteDashboard:     protected,
			RouteHabits:        protected,
			RouteGoals:         protected,
			RouteEvents:        protected,
			RouteTasks:         protected,
			RouteDiary:         protected,
			RouteNotifications: protected,
			RouteUsers:         {auth, admin},
		},
	}
}

// Known reports whether route is in the table.
func (r *Router) Known(route string) bool {
	_, ok := r.chains[normalize(route)]
	return ok
}

// Resolve returns the route that navigation to route ends up on after
// following guard redirects. "/" resolves to the dashboard and unknown
// routes resolve to "/".
func (r *Router) Resolve(route string) (string, error) {
	current := route
	for hop := 0; hop < maxHops; hop++ {
		current = r.canonical(current)

		redirect := ""
		for _, g := range r.chains[current] {
			if d := g.CanActivate(current); !d.Allow {
				redirect = d.Redirect
				break
			}
		}
		if redirect == "" {
			return current, nil
		}
		current = redirect
	}
	return "", fmt.Errorf("too many redirects resolving %q", route)
}

func (r *Router) canonical(route string) string {
	route = normalize(route)
	if route == RouteRoot {
		return RouteDashboard
	}
	if _, ok := r.chains[route]; !ok {
		return RouteDashboard
	}
	return route
}

func normalize(route string) string {
	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
