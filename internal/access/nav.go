package access

import "github.com/haulzy/haulzy-backend/internal/auth"

type Link struct {
	Label  string `json:"label"`
	To     string `json:"to"`
	Action string `json:"action,omitempty"`
}

// NavLinks returns the header links shown on the page at p.
func NavLinks(p string, s *auth.Session) []Link {
	p = Normalize(p)
	var links []Link

	if p == "/" || p == "/signup" {
		links = append(links, Link{Label: "Download", To: "/download"})
	}
	if p == "/" || p == "/download" {
		links = append(links, Link{Label: "Pricing", To: "/signup"})
	}

	switch {
	case s != nil && s.Admin:
		links = append(links,
			Link{Label: "Dashboard", To: "/dashboard"},
			Link{Label: "Returns", To: "/returns"},
			Link{Label: "Users", To: "/users"},
			Link{Label: "Logout", To: HomePath, Action: "logout"},
		)
	case s != nil:
		links = append(links, Link{Label: "Logout", To: HomePath, Action: "logout"})
	case p == "/":
		links = append(links, Link{Label: "Login", To: LoginPath})
	}
	return links
}
