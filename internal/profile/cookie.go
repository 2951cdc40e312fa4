// Package profile implements the on-disk credential store: named sets of
// authentication cookies ("profiles"), one JSON file per profile.
package profile

import (
	"strings"
)

// SameSite is a cookie same-site policy. Empty means unset.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
	SameSiteUnset  SameSite = ""
)

// Cookie is a single authentication cookie as stored in a profile file.
// The JSON field names match the browser cookie-export format, so a file
// exported by a cookie extension loads without translation.
//
// Cookie values are SENSITIVE and must never appear in logs or error
// messages. Only Name and Domain may be logged.
type Cookie struct {
	Domain         string   `json:"domain"`
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Path           string   `json:"path,omitempty"`
	ExpirationDate float64  `json:"expirationDate,omitempty"`
	HostOnly       bool     `json:"hostOnly,omitempty"`
	HTTPOnly       bool     `json:"httpOnly,omitempty"`
	Secure         bool     `json:"secure,omitempty"`
	Session        bool     `json:"session,omitempty"`
	SameSite       SameSite `json:"sameSite,omitempty"`
}

// NormalizeSameSite maps a raw same-site string onto the recognized set.
// The legacy browser-export alias "no_restriction" means None. Anything
// else outside {Strict, Lax, None} collapses to unset rather than being
// rejected, so an odd export still loads.
func NormalizeSameSite(raw string) SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return SameSiteStrict
	case "lax":
		return SameSiteLax
	case "none", "no_restriction":
		return SameSiteNone
	default:
		return SameSiteUnset
	}
}

// normalize trims the identity fields and collapses the same-site value.
// Returns false if the cookie is unusable (empty name, value or domain).
func (c *Cookie) normalize() bool {
	c.Name = strings.TrimSpace(c.Name)
	c.Value = strings.TrimSpace(c.Value)
	c.Domain = strings.TrimSpace(c.Domain)
	c.SameSite = NormalizeSameSite(string(c.SameSite))
	return c.Name != "" && c.Value != "" && c.Domain != ""
}

// NormalizeCookies normalizes a cookie slice in place, dropping unusable
// entries. The relative order of kept cookies is preserved.
func NormalizeCookies(cookies []Cookie) []Cookie {
	out := cookies[:0]
	for _, c := range cookies {
		if c.normalize() {
			out = append(out, c)
		}
	}
	return out
}
