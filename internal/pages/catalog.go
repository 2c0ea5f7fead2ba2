package pages

import (
	"path"
	"path/filepath"
	"strings"
)

// Page is a named HTML page served from the static directory.
type Page struct {
	Route string
	File  string
}

// AppShell is the client-side routed application page.
const AppShell = "index.html"

// Catalog is the fixed set of pages the server delivers by name.
var Catalog = []Page{
	{Route: "/", File: "landing.html"},
	{Route: "/index.html", File: AppShell},
	{Route: "/login.html", File: "login.html"},
	{Route: "/support.html", File: "support.html"},
	{Route: "/access.html", File: "access.html"},
	{Route: "/admin.html", File: "admin.html"},
	{Route: "/dev-portal.html", File: "dev-portal.html"},
}

// Lookup returns the catalog page registered for route.
func Lookup(route string) (Page, bool) {
	for _, p := range Catalog {
		if p.Route == route {
			return p, true
		}
	}
	return Page{}, false
}

// IsAPIPath reports whether urlPath belongs to the JSON API namespace.
func IsAPIPath(urlPath string) bool {
	return urlPath == "/api" || strings.HasPrefix(urlPath, "/api/")
}

// Resolve maps a request path onto a file inside root. The path is cleaned
// against "/" first so it can never climb out of root.
func Resolve(root, urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	return filepath.Join(root, filepath.FromSlash(cleaned))
}
