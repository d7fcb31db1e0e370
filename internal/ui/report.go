package ui

import (
	"fmt"
	"io"
	"strings"
)

// Status is the outcome of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

// Check is one line of a [Report].
type Check struct {
	Label  string
	Status Status
	Detail string
}

// Report is a titled list of checks with an optional hint shown when any check fails.
type Report struct {
	Title  string
	Checks []Check
	Hint   string
}

// Add appends a check and returns the report for chaining.
func (r *Report) Add(label string, status Status, detail string) *Report {
	r.Checks = append(r.Checks, Check{Label: label, Status: status, Detail: detail})
	return r
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// Render writes the report to w using the default palette.
func (r *Report) Render(w io.Writer) error {
	return r.RenderWith(w, styles)
}

// RenderWith writes the report to w using p.
func (r *Report) RenderWith(w io.Writer, p *Palette) error {
	var b strings.Builder

	if r.Title != "" {
		b.WriteString(p.title.Render(r.Title))
		b.WriteString("\n")
	}

	width := 0
	for _, c := range r.Checks {
		width = max(width, len(c.Label))
	}

	for _, c := range r.Checks {
		fmt.Fprintf(&b, "  %-*s  %s", width, c.Label, p.Status(c.Status))
		if c.Detail != "" {
			fmt.Fprintf(&b, "  %s", c.Detail)
		}
		b.WriteString("\n")
	}

	if r.Failed() && r.Hint != "" {
		b.WriteString("\n")
		b.WriteString(p.help.Render(r.Hint))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
