package server

import (
	"net/http"
	"strings"
)

const (
	RoleHost  = "host"
	RoleAdmin = "admin"
)

type User struct {
	ID   int
	Role string
}

// Identity resolves the authenticated user of a request. Credential storage
// and login flows live outside this service; only room creation and catalog
// administration consult this boundary.
type Identity interface {
	CurrentUser(r *http.Request) (User, bool)
}

// TokenIdentity grants roles to static bearer tokens from configuration.
type TokenIdentity struct {
	users map[string]User
}

func NewTokenIdentity(hostToken, adminToken string) *TokenIdentity {
	users := make(map[string]User)
	if hostToken != "" {
		users[hostToken] = User{ID: 1, Role: RoleHost}
	}
	if adminToken != "" {
		users[adminToken] = User{ID: 2, Role: RoleAdmin}
	}
	return &TokenIdentity{users: users}
}

func (t *TokenIdentity) CurrentUser(r *http.Request) (User, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return User{}, false
	}
	user, ok := t.users[token]
	return user, ok
}

// requireRole resolves the current user and checks their role, writing the
// appropriate status on failure.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, role string) (User, bool) {
	user, ok := s.Identity.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return User{}, false
	}
	if user.Role != role {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return User{}, false
	}
	return user, true
}
