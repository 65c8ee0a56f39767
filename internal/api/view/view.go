// Package view holds the server-rendered HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names
const (
	Home       = "home.html"
	Movie      = "movies.html"
	NewReview  = "new_review.html"
	EditReview = "edit_review.html"
	Signup     = "signup.html"
	Login      = "login.html"
	Error      = "error.html"
)

var funcs = template.FuncMap{
	"truncate": func(n int, s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
}

// Load parses every page and partial into one template set
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
