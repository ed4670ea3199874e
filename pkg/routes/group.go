// Package routes declares HTTP routes as nested groups and registers them on a
// net/http ServeMux.
package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		group.walk("", func(prefix string, r Route) {
			mux.HandleFunc(r.Key(prefix), r.Handler)
		})
	}
}

// Patterns lists the mux patterns the groups register, in declaration order.
func Patterns(groups ...Group) []string {
	var out []string
	for _, group := range groups {
		group.walk("", func(prefix string, r Route) {
			out = append(out, r.Key(prefix))
		})
	}
	return out
}

func (g Group) walk(parent string, fn func(prefix string, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}
