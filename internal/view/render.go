package view

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

var (
	headingColor = color.New(color.Bold, color.Underline)
	roleColor    = map[domain.Role]*color.Color{
		domain.RoleAdmin: color.New(color.FgRed),
		domain.RoleOwner: color.New(color.FgYellow),
		domain.RoleUser:  color.New(color.FgBlue),
	}
)

// Header is the banner printed above every signed-in screen.
func Header(w io.Writer, s *domain.Session) {
	fmt.Fprintf(w, "%s   Welcome, %s (%s)\n\n", headingColor.Sprint("Store Ratings App"), s.Name, roleBadge(s.Role))
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, headingColor.Sprint(title))
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func roleBadge(r domain.Role) string {
	if c, ok := roleColor[r]; ok {
		return c.Sprint(string(r))
	}
	return string(r)
}

// stars draws a 0-5 rating rounded to the nearest whole star.
func stars(avg float64) string {
	n := int(math.Round(avg))
	if n < 0 {
		n = 0
	}
	if n > domain.MaxRating {
		n = domain.MaxRating
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxRating-n)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
