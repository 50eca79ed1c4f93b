package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicRoutesAllows(t *testing.T) {
	routes := MustPublicRoutes(DefaultPublicRoutes)

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{"POST", "/auth/login", true},
		{"GET", "/auth/login", false},
		{"POST", "/auth/refresh", true},
		{"GET", "/auth/me", false},
		{"GET", "/place/42", true},
		{"GET", "/place/42/", true},
		{"GET", "/place/42/reviews", false},
		{"DELETE", "/place/42", false},
		{"GET", "/images/2025/03/a.png", true},
		{"GET", "/images", false},
		{"PUT", "/notice", true},
		{"get", "/qna/7/answers", true},
		{"DELETE", "/member/me", false},
		{"GET", "/admin/sessions/alice", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, routes.Allows(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestPublicRoutesLiteralSegmentsAreQuoted(t *testing.T) {
	routes, err := NewPublicRoutes([]PublicRoute{{"GET", "/files/[draft]"}, {"", "/ping"}})
	require.NoError(t, err)

	assert.True(t, routes.Allows("GET", "/files/[draft]"))
	assert.False(t, routes.Allows("GET", "/files/d"))
	assert.True(t, routes.Allows("PATCH", "/ping"))
}

func TestPublicRoutesNil(t *testing.T) {
	var routes *PublicRoutes
	assert.False(t, routes.Allows("GET", "/"))
}
