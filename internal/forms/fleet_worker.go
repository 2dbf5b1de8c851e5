package forms

import (
	"html/template"

	"github.com/poofware/submission-service/internal/routes"
	v "github.com/poofware/submission-service/internal/validation"
)

// specialtyCategories maps fleet-worker category codes to display labels.
var specialtyCategories = map[string]string{
	"A": "Management & Operations",
	"B": "Driving & Transportation",
	"C": "Maintenance & Repair",
	"D": "Warehouse & Logistics",
	"E": "Safety & Compliance",
}

// CategoryLabel resolves a specialty code, falling back to the code itself.
func CategoryLabel(code string) string {
	if label, ok := specialtyCategories[code]; ok {
		return label
	}
	return code
}

// categoryLabelHTML marks known labels as trusted markup; unknown codes are
// user input and stay escaped.
func categoryLabelHTML(code string) template.HTML {
	if label, ok := specialtyCategories[code]; ok {
		return template.HTML(label)
	}
	return template.HTML(template.HTMLEscapeString(code))
}

const fleetAdminContent = `<ul>
      <li><strong>Name:</strong> {{.R.firstName}} {{.R.lastName}}</li>
      <li><strong>Email:</strong> {{.R.email}}</li>
      <li><strong>Phone:</strong> {{.R.phone}}</li>
      <li><strong>City:</strong> {{.R.city}}</li>
      <li><strong>Specialty category:</strong> {{.Extra.CategoryLabel}}</li>
      <li><strong>Specialty:</strong> {{.R.specialtySubcategory}}</li>
      <li><strong>Years of experience:</strong> {{.R.yearsOfExperience}}</li>
      {{- with .R.cdlLicense}}
      <li><strong>CDL license:</strong> {{.}}</li>
      {{- end}}
    </ul>
    <p><strong>About the applicant:</strong></p>
    <div class="details">{{.R.details}}</div>`

const fleetAckContent = `<p>Hello {{.R.firstName}},</p>
      <p>Thank you for applying to our fleet team in the <strong>{{.Extra.CategoryLabel}}</strong> category. We've received your application and will review your experience shortly.</p>
      <p>Qualified candidates will be contacted by phone or email to schedule the next steps.</p>`

var (
	fleetAdminPage = mustPage(adminLayout, fleetAdminContent)
	fleetAckPage   = mustPage(ackLayout, fleetAckContent)
)

// FleetWorker is the fleet worker job application form.
var FleetWorker = &Form{
	Name: "fleet-worker",
	Path: routes.SubmitFleetWorker,
	Schema: v.Schema{
		personNameField("firstName", "First name"),
		personNameField("lastName", "Last name"),
		emailField(),
		phoneField(),
		cityField(),
		v.F("specialtyCategory", "Specialty category", v.Required(), v.Trimmed(), v.MaxLength(50)),
		v.F("specialtySubcategory", "Specialty subcategory", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(100)),
		yearsField(),
		v.F("cdlLicense", "CDL license", v.Optional(), v.Trimmed(), v.MaxLength(50)),
		detailsField(),
	},
	SuccessMessage: "Application submitted successfully",
	EmailField:     "email",
	LogFields:      []string{"firstName", "lastName", "city", "specialtyCategory"},
	AdminSubject: func(r v.Record) string {
		return "New Fleet Worker Application: " + r.Get("firstName") + " " + r.Get("lastName") +
			" (" + CategoryLabel(r.Get("specialtyCategory")) + ")"
	},
	AckSubject: func(v.Record) string {
		return "Your fleet worker application has been received"
	},
	Render: func(r v.Record) (Rendered, error) {
		extra := map[string]any{"CategoryLabel": categoryLabelHTML(r.Get("specialtyCategory"))}
		return renderPair(fleetAdminPage, fleetAckPage, "New Fleet Worker Application", "Application received", r, extra)
	},
}
