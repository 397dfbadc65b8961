package webui

import (
	"net/url"
	"strings"
)

// View names a view component of the web UI
type View string

const (
	LoginView          View = "LoginView"
	ChatLayout         View = "ChatLayout"
	ConversationsEmpty View = "ConversationsEmpty"
	ConversationView   View = "ConversationView"
	ConversationsView  View = "ConversationsView"
)

// Well-known paths
const (
	RootPath          = "/"
	LoginPath         = "/login"
	ChatPath          = "/chat"
	ConversationsPath = "/conversations"
)

// RouteConversation is the name of the single-conversation route
const RouteConversation = "conversation"

// Location is a navigation target after matching
type Location struct {
	Path   string
	Params map[string]string
	Query  string
}

// Param returns a captured path parameter or "" when absent
func (l Location) Param(name string) string {
	if l.Params == nil {
		return ""
	}
	return l.Params[name]
}

// RedirectFunc computes where a route sends the user instead of rendering
type RedirectFunc func(to Location) string

// To returns a static redirect
func To(path string) RedirectFunc {
	return func(Location) string { return path }
}

// Route is one entry of the route table. Child paths are relative to the
// parent; an empty child path matches the parent path itself.
type Route struct {
	Path     string
	Name     string
	View     View
	Redirect RedirectFunc
	Children []Route
}

// DefaultRoutes returns the web UI route table
func DefaultRoutes() []Route {
	return []Route{
		{Path: RootPath, Redirect: To(ChatPath)},
		{Path: LoginPath, View: LoginView},
		{
			Path: ChatPath,
			View: ChatLayout,
			Children: []Route{
				{Path: "", View: ConversationsEmpty},
				{Path: ":id", Name: RouteConversation, View: ConversationView},
			},
		},
		{Path: ConversationsPath, View: ConversationsView},
		{Path: ConversationsPath + "/:id", Redirect: func(to Location) string {
			return ConversationPath(to.Param("id"))
		}},
	}
}

// ConversationPath builds /chat/<id>
func ConversationPath(id string) string {
	return ChatPath + "/" + url.PathEscape(id)
}

// normalizePath makes sure the path is absolute and drops a trailing slash
func normalizePath(p string) string {
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// splitTarget separates "path?query" and normalizes the path
func splitTarget(target string) (string, string) {
	path, query, _ := strings.Cut(strings.TrimSpace(target), "?")
	return normalizePath(path), query
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func joinPath(parent, child string) string {
	if child == "" {
		return normalizePath(parent)
	}
	if strings.HasPrefix(child, "/") {
		return normalizePath(child)
	}
	return normalizePath(strings.TrimSuffix(parent, "/") + "/" + child)
}
