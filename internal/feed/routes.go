package feed

import "strings"

// View is a navigable screen. The hash route is the single source of truth
// for both the view and the selected fragment.
type View string

const (
	ViewRead    View = "read"
	ViewEchoes  View = "echoes"
	ViewCreate  View = "create"
	ViewDetail  View = "detail"
	ViewAuth    View = "auth"
	ViewAdmin   View = "admin"
	ViewProfile View = "profile"
	ViewRanks   View = "ranks"
)

// Route is a resolved hash location.
type Route struct {
	View       View
	FragmentID string
}

// Path renders the canonical hash form of the route.
func (r Route) Path() string {
	switch r.View {
	case ViewDetail:
		return "#/p/" + r.FragmentID
	case ViewRead:
		return "#/read"
	default:
		return "#/" + string(r.View)
	}
}

// protectedViews require a signed-in actor; without one they resolve to the
// auth view instead.
var protectedViews = map[View]bool{
	ViewCreate:  true,
	ViewAdmin:   true,
	ViewProfile: true,
}

// ResolveRoute maps a raw hash location to a view. Unknown routes fall back
// to the curated reading view, and deep links resolve the same way whether
// or not the actor navigated there from inside the app.
func ResolveRoute(raw string, signedIn bool) Route {
	path := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	path = strings.Trim(path, "/")

	var route Route
	switch {
	case path == "" || path == "read":
		route = Route{View: ViewRead}
	case path == "echoes":
		route = Route{View: ViewEchoes}
	case path == "create":
		route = Route{View: ViewCreate}
	case path == "auth":
		route = Route{View: ViewAuth}
	case path == "admin":
		route = Route{View: ViewAdmin}
	case path == "profile":
		route = Route{View: ViewProfile}
	case path == "ranks":
		route = Route{View: ViewRanks}
	case strings.HasPrefix(path, "p/"):
		id := strings.TrimPrefix(path, "p/")
		if id == "" {
			route = Route{View: ViewRead}
		} else {
			route = Route{View: ViewDetail, FragmentID: id}
		}
	default:
		route = Route{View: ViewRead}
	}

	if protectedViews[route.View] && !signedIn {
		return Route{View: ViewAuth}
	}
	return route
}
