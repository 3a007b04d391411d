package models

import (
	"fmt"

	"go.uber.org/multierr"
)

type Violation struct {
	Page int
	Side Side
}

func (v Violation) String() string {
	return fmt.Sprintf("page %d exceeds %s margin", v.Page, v.Side)
}

// PageResult is the outcome of checking one page. Err is set when the page
// could not be decoded or scanned; Sides is empty in that case.
type PageResult struct {
	Page  int
	Sides []Side
	Err   error
}

func (r PageResult) Violated() bool {
	return len(r.Sides) > 0
}

// Report collects page results in ascending page order.
type Report struct {
	Pages []PageResult
}

func (r *Report) Violations() []Violation {
	var out []Violation
	for _, p := range r.Pages {
		for _, side := range p.Sides {
			out = append(out, Violation{Page: p.Page, Side: side})
		}
	}
	return out
}

func (r *Report) HasViolations() bool {
	for _, p := range r.Pages {
		if p.Violated() {
			return true
		}
	}
	return false
}

// Err combines the errors of all pages that could not be checked.
func (r *Report) Err() error {
	var err error
	for _, p := range r.Pages {
		if p.Err != nil {
			err = multierr.Append(err, fmt.Errorf("page %d: %w", p.Page, p.Err))
		}
	}
	return err
}

// Failed reports whether any page violated a margin or could not be checked.
func (r *Report) Failed() bool {
	return r.HasViolations() || r.Err() != nil
}

func (r *Report) PageCount() int {
	return len(r.Pages)
}
