package webui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/wasatext/internal/credential"
)

// MaxRedirects bounds the redirects followed by a single navigation
const MaxRedirects = 10

var (
	// ErrRedirectLoop is returned when a navigation keeps redirecting
	ErrRedirectLoop = errors.New("navigation redirect limit exceeded")
	// ErrInvalidRoute is returned by New for a malformed route table
	ErrInvalidRoute = errors.New("invalid route")
)

// Guard runs before every navigation. It returns the path to redirect to,
// or "" to let the navigation through.
type Guard func(to Location, authenticated bool) string

// AuthGuard sends anonymous users to the login screen and keeps
// authenticated users away from it.
func AuthGuard(to Location, authenticated bool) string {
	if !authenticated && to.Path != LoginPath {
		return LoginPath
	}
	if authenticated && to.Path == LoginPath {
		return ChatPath
	}
	return ""
}

// Resolution is the outcome of a navigation
type Resolution struct {
	Path      string            `json:"path"`
	Query     string            `json:"query,omitempty"`
	Name      string            `json:"name,omitempty"`
	Matched   []View            `json:"matched"`
	Params    map[string]string `json:"params,omitempty"`
	Redirects []string          `json:"redirects,omitempty"`
	Found     bool              `json:"found"`
}

// View returns the innermost matched view, or "" when nothing matched
func (r Resolution) View() View {
	if len(r.Matched) == 0 {
		return ""
	}
	return r.Matched[len(r.Matched)-1]
}

// FullPath returns the path with its query string
func (r Resolution) FullPath() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// RouteInfo describes a compiled route for listing
type RouteInfo struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Views    []View `json:"views,omitempty"`
	Redirect bool   `json:"redirect"`
}

// record is a flattened route with its layout chain
type record struct {
	path     string
	segments []string
	name     string
	views    []View
	redirect RedirectFunc
}

// Router resolves navigation targets against the route table
type Router struct {
	records []record
	auth    credential.Reader
	guard   Guard
	logger  *slog.Logger
}

// New compiles the route table. auth is consulted on every navigation.
func New(routes []Route, auth credential.Reader, logger *slog.Logger) (*Router, error) {
	if auth == nil {
		return nil, errors.New("credential reader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		auth:   auth,
		guard:  AuthGuard,
		logger: logger,
	}

	seen := make(map[string]bool)
	for _, route := range routes {
		if err := r.compile(route, "", nil, seen); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// UseGuard replaces the navigation guard. A nil guard disables guarding.
func (r *Router) UseGuard(g Guard) {
	r.guard = g
}

func (r *Router) compile(route Route, parent string, layouts []View, seen map[string]bool) error {
	if parent == "" && !strings.HasPrefix(route.Path, "/") {
		return fmt.Errorf("%w: top-level path %q must start with /", ErrInvalidRoute, route.Path)
	}
	if route.View == "" && route.Redirect == nil && len(route.Children) == 0 {
		return fmt.Errorf("%w: %q has no view, redirect or children", ErrInvalidRoute, route.Path)
	}

	full := joinPath(parent, route.Path)

	views := append([]View(nil), layouts...)
	if route.View != "" {
		views = append(views, route.View)
	}

	// A parent with children only renders through them
	if len(route.Children) > 0 {
		for _, child := range route.Children {
			if err := r.compile(child, full, views, seen); err != nil {
				return err
			}
		}
		return nil
	}

	if seen[full] {
		return fmt.Errorf("%w: duplicate path %q", ErrInvalidRoute, full)
	}
	seen[full] = true

	segments := splitSegments(full)
	params := make(map[string]bool)
	for _, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if name == "" {
				return fmt.Errorf("%w: empty parameter name in %q", ErrInvalidRoute, full)
			}
			if params[name] {
				return fmt.Errorf("%w: parameter %q repeated in %q", ErrInvalidRoute, name, full)
			}
			params[name] = true
		}
	}

	r.records = append(r.records, record{
		path:     full,
		segments: segments,
		name:     route.Name,
		views:    views,
		redirect: route.Redirect,
	})
	return nil
}

// match finds the first record matching path, in table order
func (r *Router) match(path string) (*record, map[string]string) {
	segments := splitSegments(path)
	for i := range r.records {
		rec := &r.records[i]
		if params, ok := matchSegments(rec.segments, segments); ok {
			return rec, params
		}
	}
	return nil, nil
}

func matchSegments(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		name, isParam := strings.CutPrefix(p, ":")
		if !isParam {
			if p != segments[i] {
				return nil, false
			}
			continue
		}
		value, err := url.PathUnescape(segments[i])
		if err != nil {
			value = segments[i]
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = value
	}
	return params, true
}

// Resolve matches path against the table without following redirects or
// running the guard
func (r *Router) Resolve(target string) Resolution {
	res, _ := r.lookup(target)
	return res
}

func (r *Router) lookup(target string) (Resolution, *record) {
	path, query := splitTarget(target)
	rec, params := r.match(path)
	if rec == nil {
		return Resolution{Path: path, Query: query}, nil
	}
	return Resolution{
		Path:    path,
		Query:   query,
		Name:    rec.name,
		Matched: append([]View(nil), rec.views...),
		Params:  params,
		Found:   true,
	}, rec
}

// Navigate resolves target the way the browser router does: route redirects
// first, then the guard on the resulting location. A guard redirect starts a
// fresh navigation. Unmatched paths still go through the guard; when it lets
// them pass the resolution comes back with Found=false.
func (r *Router) Navigate(target string) (Resolution, error) {
	var redirects []string
	current := target

	for hops := 0; ; hops++ {
		if hops > MaxRedirects {
			return Resolution{}, fmt.Errorf("%w: %s", ErrRedirectLoop, strings.Join(redirects, " -> "))
		}

		res, rec := r.lookup(current)
		loc := Location{Path: res.Path, Params: res.Params, Query: res.Query}

		if rec != nil && rec.redirect != nil {
			next := rec.redirect(loc)
			// route redirects keep the query unless they carry their own
			if !strings.Contains(next, "?") && res.Query != "" {
				next += "?" + res.Query
			}
			r.logger.Debug("route redirect", "from", res.FullPath(), "to", next)
			redirects = append(redirects, res.FullPath())
			current = next
			continue
		}

		if r.guard != nil {
			_, authenticated := r.auth.Identifier()
			if next := r.guard(loc, authenticated); next != "" {
				r.logger.Debug("navigation guard redirect", "from", res.FullPath(), "to", next, "authenticated", authenticated)
				redirects = append(redirects, res.FullPath())
				current = next
				continue
			}
		}

		if !res.Found {
			r.logger.Debug("no route matched", "path", res.Path)
		}
		res.Redirects = redirects
		return res, nil
	}
}

// NavigateURL navigates to the route carried by a hash-history URL such as
// http://host/#/chat/3 or #/chat/3. A plain path is navigated as is.
func (r *Router) NavigateURL(raw string) (Resolution, error) {
	return r.Navigate(TargetFromURL(raw))
}

// TargetFromURL extracts the in-app path from a hash-history URL
func TargetFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if fragment, ok := strings.CutPrefix(raw, "#"); ok {
		return normalizeFragment(fragment)
	}
	if strings.HasPrefix(raw, "/") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	if u.Fragment != "" {
		return normalizeFragment(u.Fragment)
	}
	return RootPath
}

func normalizeFragment(fragment string) string {
	if fragment == "" {
		return RootPath
	}
	return fragment
}

// Routes lists the compiled routes in table order
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, RouteInfo{
			Path:     rec.path,
			Name:     rec.name,
			Views:    append([]View(nil), rec.views...),
			Redirect: rec.redirect != nil,
		})
	}
	return out
}
