// Package access decides which browser routes a session may open.
package access

import (
	"path"
	"strings"

	"github.com/haulzy/haulzy-backend/internal/auth"
)

// Requirement is the minimum session a route needs.
type Requirement string

const (
	Public        Requirement = "public"
	Authenticated Requirement = "authenticated"
	Admin         Requirement = "admin"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Routes is the browser route table. Paths not listed are public.
var Routes = map[string]Requirement{
	"/":          Public,
	"/login":     Public,
	"/signup":    Public,
	"/success":   Public,
	"/privacy":   Public,
	"/terms":     Public,
	"/download":  Public,
	"/purchase":  Authenticated,
	"/dashboard": Admin,
	"/returns":   Admin,
	"/users":     Admin,
}

type Decision struct {
	Path        string      `json:"path"`
	Requirement Requirement `json:"requirement"`
	Allowed     bool        `json:"allowed"`
	Redirect    string      `json:"redirect,omitempty"`
}

// Requires returns the requirement for p, matching on its first segment so
// that nested paths inherit their parent's gate. Matching ignores case, as
// the browser router does.
func Requires(p string) Requirement {
	clean := strings.ToLower(Normalize(p))
	if r, ok := Routes[clean]; ok {
		return r
	}
	if i := strings.Index(clean[1:], "/"); i >= 0 {
		if r, ok := Routes[clean[:i+1]]; ok {
			return r
		}
	}
	return Public
}

// Decide allows the route or says where to send the browser: anonymous
// callers go to the login page, signed-in non-admins go home.
func Decide(p string, s *auth.Session) Decision {
	d := Decision{Path: Normalize(p), Requirement: Requires(p), Allowed: true}
	switch d.Requirement {
	case Authenticated:
		if s == nil {
			d.Allowed, d.Redirect = false, LoginPath
		}
	case Admin:
		switch {
		case s == nil:
			d.Allowed, d.Redirect = false, LoginPath
		case !s.Admin:
			d.Allowed, d.Redirect = false, HomePath
		}
	}
	return d
}

// Normalize cleans p into an absolute path without query or fragment.
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return HomePath
	}
	return path.Clean("/" + p)
}
