package auth

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// AnyMethod matches every HTTP method in a PublicRoute.
const AnyMethod = "*"

// PublicRoute is one allow-list entry. Pattern segments written as {name}
// match exactly one path segment; a trailing ** matches any remainder.
type PublicRoute struct {
	Method  string
	Pattern string
}

// DefaultPublicRoutes are reachable without a token.
var DefaultPublicRoutes = []PublicRoute{
	{AnyMethod, "/swagger-ui/**"},
	{AnyMethod, "/v3/api-docs/**"},
	{AnyMethod, "/notice"},
	{AnyMethod, "/recruits/recent3"},
	{AnyMethod, "/recruits/search"},

	// token-handling endpoints inspect credentials themselves
	{"POST", "/auth/login"},
	{"POST", "/auth/logout"},
	{"POST", "/auth/refresh"},
	{"POST", "/auth/restore"},
	{"POST", "/member/join"},

	{"GET", "/health/live"},
	{"GET", "/health/ready"},
	{"GET", "/metrics"},
	{"GET", "/place"},
	{"GET", "/place/{id}"},
	{"GET", "/place/cities"},
	{"GET", "/api/reviews"},
	{"GET", "/api/reviews/{reviewId}"},
	{"GET", "/api/reviews/place/{placeId}"},
	{"GET", "/api/comments/review/{reviewId}"},
	{"GET", "/recruits"},
	{"GET", "/recruits/{recruitId}"},
	{"GET", "/recruits/{recruitId}/applies"},
	{"GET", "/qna"},
	{"GET", "/qna/{id}"},
	{"GET", "/qna/{questionId}/answers"},
	{"GET", "/images/**"},
}

type compiledRoute struct {
	method  string
	pattern string
	matcher glob.Glob
}

// PublicRoutes evaluates the allow-list independently of the HTTP router.
type PublicRoutes struct {
	routes []compiledRoute
}

// NewPublicRoutes compiles routes.
func NewPublicRoutes(routes []PublicRoute) (*PublicRoutes, error) {
	compiled := make([]compiledRoute, 0, len(routes))
	for _, r := range routes {
		g, err := glob.Compile(toGlob(r.Pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("compile public route %s %s: %w", r.Method, r.Pattern, err)
		}
		method := strings.ToUpper(strings.TrimSpace(r.Method))
		if method == "" {
			method = AnyMethod
		}
		compiled = append(compiled, compiledRoute{method: method, pattern: r.Pattern, matcher: g})
	}
	return &PublicRoutes{routes: compiled}, nil
}

// MustPublicRoutes is NewPublicRoutes for static tables.
func MustPublicRoutes(routes []PublicRoute) *PublicRoutes {
	p, err := NewPublicRoutes(routes)
	if err != nil {
		panic(err)
	}
	return p
}

// Allows reports whether method+path skips authentication.
func (p *PublicRoutes) Allows(method, path string) bool {
	if p == nil {
		return false
	}
	path = normalizePath(path)
	method = strings.ToUpper(method)
	for _, r := range p.routes {
		if r.method != AnyMethod && r.method != method {
			continue
		}
		if r.matcher.Match(path) {
			return true
		}
	}
	return false
}

func toGlob(pattern string) string {
	segments := strings.Split(normalizePath(pattern), "/")
	for i, seg := range segments {
		switch {
		case seg == "**", seg == "*":
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			segments[i] = "*"
		default:
			segments[i] = glob.QuoteMeta(seg)
		}
	}
	return strings.Join(segments, "/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
