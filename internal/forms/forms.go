// Package forms declares the four public web forms. Each Form bundles its
// rule table, its two HTML renderings and its email subjects so a single
// submission pipeline can serve all of them.
package forms

import (
	"github.com/poofware/submission-service/internal/validation"
)

// Rendered holds the two documents produced for one submission.
type Rendered struct {
	AdminHTML string
	AckHTML   string
}

// Form describes one form type.
type Form struct {
	Name           string
	Path           string
	Schema         validation.Schema
	SuccessMessage string

	// EmailField names the validated field holding the submitter's address.
	EmailField string
	// LogFields are the non-sensitive fields written to the success log.
	LogFields []string

	AdminSubject func(validation.Record) string
	AckSubject   func(validation.Record) string
	Render       func(validation.Record) (Rendered, error)
}

// All returns every form in a stable order.
func All() []*Form {
	return []*Form{Quote, Guard, Company, FleetWorker}
}

// Paths lists the submission endpoints of every form.
func Paths() []string {
	out := make([]string, 0, 4)
	for _, f := range All() {
		out = append(out, f.Path)
	}
	return out
}
