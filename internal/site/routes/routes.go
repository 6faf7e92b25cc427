// Package routes declares the page-route map of the site. It is the one
// place page paths are listed; the sitemap, the route index API and the
// page router all read from it.
package routes

import (
	"strings"

	id "civicfund/pkg/domain"
)

type Section string

const (
	SectionMarketing Section = "marketing"
	SectionDonor     Section = "donor"
	SectionDashboard Section = "dashboard"
	SectionAdmin     Section = "admin"
)

// Sections lists sections in display order.
var Sections = []Section{SectionMarketing, SectionDonor, SectionDashboard, SectionAdmin}

// Route is one page of the site.
type Route struct {
	Path    string  `json:"path"`
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Section Section `json:"section"`
	// Role is the role required to open the page; empty means anyone.
	Role id.Role `json:"role,omitempty"`
	// Indexed routes appear in the sitemap.
	Indexed bool `json:"indexed"`
}

// Parameterized reports whether the path has {placeholders}.
func (r Route) Parameterized() bool {
	return strings.Contains(r.Path, "{")
}

// Public reports whether the page can be opened without signing in.
func (r Route) Public() bool {
	return r.Role == ""
}

var all = []Route{
	{Path: "/", Name: "home", Title: "Home", Section: SectionMarketing, Indexed: true},
	{Path: "/about", Name: "about", Title: "About", Section: SectionMarketing, Indexed: true},
	{Path: "/how-it-works", Name: "how-it-works", Title: "How it works", Section: SectionMarketing, Indexed: true},
	{Path: "/campaigns", Name: "campaigns", Title: "Campaigns", Section: SectionMarketing, Indexed: true},
	{Path: "/campaigns/{slug}", Name: "campaign", Title: "Campaign", Section: SectionMarketing},
	{Path: "/blog", Name: "blog", Title: "Blog", Section: SectionMarketing, Indexed: true},
	{Path: "/blog/{slug}", Name: "blog-post", Title: "Blog post", Section: SectionMarketing},
	{Path: "/contact", Name: "contact", Title: "Contact", Section: SectionMarketing, Indexed: true},
	{Path: "/faq", Name: "faq", Title: "FAQ", Section: SectionMarketing, Indexed: true},
	{Path: "/privacy", Name: "privacy", Title: "Privacy policy", Section: SectionMarketing, Indexed: true},
	{Path: "/terms", Name: "terms", Title: "Terms of service", Section: SectionMarketing, Indexed: true},

	{Path: "/login", Name: "login", Title: "Sign in", Section: SectionDonor},
	{Path: "/login/verify", Name: "login-verify", Title: "Verify sign-in", Section: SectionDonor},
	{Path: "/register", Name: "register", Title: "Register", Section: SectionDonor, Indexed: true},
	{Path: "/donate/{campaignID}", Name: "donate", Title: "Donate", Section: SectionDonor},

	{Path: "/dashboard", Name: "dashboard", Title: "Dashboard", Section: SectionDashboard, Role: id.RoleDonor},
	{Path: "/dashboard/donations", Name: "dashboard-donations", Title: "My donations", Section: SectionDashboard, Role: id.RoleDonor},
	{Path: "/dashboard/campaigns", Name: "dashboard-campaigns", Title: "Supported campaigns", Section: SectionDashboard, Role: id.RoleDonor},
	{Path: "/dashboard/settings", Name: "dashboard-settings", Title: "Settings", Section: SectionDashboard, Role: id.RoleDonor},

	{Path: "/admin", Name: "admin", Title: "Admin overview", Section: SectionAdmin, Role: id.RoleAdmin},
	{Path: "/admin/users", Name: "admin-users", Title: "Users", Section: SectionAdmin, Role: id.RoleAdmin},
	{Path: "/admin/registrations", Name: "admin-registrations", Title: "Registrations", Section: SectionAdmin, Role: id.RoleAdmin},
	{Path: "/admin/campaigns", Name: "admin-campaigns", Title: "Campaign review", Section: SectionAdmin, Role: id.RoleAdmin},
	{Path: "/admin/analytics", Name: "admin-analytics", Title: "Analytics", Section: SectionAdmin, Role: id.RoleAdmin},
}

// All returns a copy of the route map in declaration order.
func All() []Route {
	out := make([]Route, len(all))
	copy(out, all)
	return out
}

// Grouped returns the routes of each section.
func Grouped() map[Section][]Route {
	out := make(map[Section][]Route, len(Sections))
	for _, r := range all {
		out[r.Section] = append(out[r.Section], r)
	}
	return out
}

// ByName looks up a route by its name.
func ByName(name string) (Route, bool) {
	for _, r := range all {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Path fills the placeholders of the named route from params, in order.
// Unknown names return "/".
func Path(name string, params ...string) string {
	r, ok := ByName(name)
	if !ok {
		return "/"
	}
	path := r.Path
	for _, p := range params {
		start := strings.Index(path, "{")
		end := strings.Index(path, "}")
		if start < 0 || end < start {
			break
		}
		path = path[:start] + p + path[end+1:]
	}
	return path
}

// Match finds the route serving a concrete request path.
func Match(path string) (Route, bool) {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	for _, r := range all {
		if matches(r.Path, path) {
			return r, true
		}
	}
	return Route{}, false
}

func matches(pattern, path string) bool {
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
