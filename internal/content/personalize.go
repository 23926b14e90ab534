// Package content renders campaign bodies per recipient and inspects their links.
package content

import (
	"regexp"

	"github.com/foxzi/campaigner/internal/models"
)

// tokenPattern matches {{identifier}} placeholders
var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\}\}`)

// Personalize substitutes every {{key}} in html for the given contact.
//
// Built-in fields (firstName, lastName, email) win when they are set; otherwise
// the key is looked up in the contact vars; otherwise the token becomes "".
// Anything that is not a well-formed token is left untouched.
func Personalize(html string, c *models.Contact) string {
	if html == "" {
		return html
	}

	return tokenPattern.ReplaceAllStringFunc(html, func(match string) string {
		key := match[2 : len(match)-2]
		if v := builtin(c, key); v != "" {
			return v
		}
		return c.Vars[key]
	})
}

func builtin(c *models.Contact, key string) string {
	switch key {
	case "firstName":
		return c.FirstName
	case "lastName":
		return c.LastName
	case "email":
		return c.Email
	}
	return ""
}
