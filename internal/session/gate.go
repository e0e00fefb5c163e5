package session

// Route is the screen group the application shows for a session state
type Route int

const (
	RouteLoading Route = iota
	RouteAuth
	RouteApp
)

func (r Route) String() string {
	switch r {
	case RouteLoading:
		return "loading"
	case RouteAuth:
		return "auth"
	case RouteApp:
		return "app"
	default:
		return "unknown"
	}
}

// Gate picks the route: nothing is shown until restore settles, then the
// app for an authenticated session and the sign-in flow otherwise.
func Gate(s State) Route {
	switch {
	case s.Loading:
		return RouteLoading
	case s.Session != nil:
		return RouteApp
	default:
		return RouteAuth
	}
}
