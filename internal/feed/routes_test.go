package feed

import "testing"

func TestResolveRoute(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		signedIn bool
		want     Route
	}{
		{"root", "#/", false, Route{View: ViewRead}},
		{"empty", "", false, Route{View: ViewRead}},
		{"read", "#/read", false, Route{View: ViewRead}},
		{"echoes", "#/echoes", false, Route{View: ViewEchoes}},
		{"ranks", "#/ranks", false, Route{View: ViewRanks}},
		{"auth", "#/auth", false, Route{View: ViewAuth}},
		{"detail", "#/p/41", false, Route{View: ViewDetail, FragmentID: "41"}},
		{"detail without id", "#/p/", false, Route{View: ViewRead}},
		{"unknown falls back", "#/constellations", true, Route{View: ViewRead}},
		{"trailing slash", "#/echoes/", false, Route{View: ViewEchoes}},
		{"create signed in", "#/create", true, Route{View: ViewCreate}},
		{"create anonymous", "#/create", false, Route{View: ViewAuth}},
		{"admin anonymous", "#/admin", false, Route{View: ViewAuth}},
		{"profile anonymous", "#/profile", false, Route{View: ViewAuth}},
		{"admin signed in", "#/admin", true, Route{View: ViewAdmin}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveRoute(tc.raw, tc.signedIn)
			if got != tc.want {
				t.Fatalf("ResolveRoute(%q, %v) = %+v, want %+v", tc.raw, tc.signedIn, got, tc.want)
			}
		})
	}
}

func TestRoutePathRoundTrip(t *testing.T) {
	route := Route{View: ViewDetail, FragmentID: "41"}
	if got := route.Path(); got != "#/p/41" {
		t.Fatalf("unexpected path %q", got)
	}
	resolved := ResolveRoute(route.Path(), true)
	if resolved != route {
		t.Fatalf("round trip lost information: %+v", resolved)
	}
}
