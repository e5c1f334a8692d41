package drive

import "github.com/rmarin/tablero/internal/domain"

// staticTokenSource serves a fixed bearer token from configuration
type staticTokenSource struct {
	token string
}

// StaticTokenSource wraps an already-acquired bearer token as a
// domain.TokenSource. An empty token is reported as unauthenticated.
func StaticTokenSource(token string) domain.TokenSource {
	return &staticTokenSource{token: token}
}

func (s *staticTokenSource) Token() string { return s.token }

func (s *staticTokenSource) IsAuthenticated() bool { return s.token != "" }
