package forms

import (
	"github.com/poofware/submission-service/internal/routes"
	v "github.com/poofware/submission-service/internal/validation"
)

const quoteAdminContent = `<ul>
      <li><strong>Name:</strong> {{.R.name}}</li>
      <li><strong>Email:</strong> {{.R.email}}</li>
      <li><strong>Phone:</strong> {{.R.phone}}</li>
      {{- with .R.company}}
      <li><strong>Company:</strong> {{.}}</li>
      {{- end}}
    </ul>
    <p><strong>Details:</strong></p>
    <div class="details">{{.R.details}}</div>`

const quoteAckContent = `<p>Hello {{.R.name}},</p>
      <p>Thank you for requesting a quote from {{.Organization}}. We've received your request and a member of our team will contact you shortly.</p>
      <p><strong>Your request:</strong></p>
      <p style="white-space: pre-wrap">{{.R.details}}</p>
      <p>If anything changes in the meantime, simply reply with the updated details.</p>`

var (
	quoteAdminPage = mustPage(adminLayout, quoteAdminContent)
	quoteAckPage   = mustPage(ackLayout, quoteAckContent)
)

// Quote is the general quote request form.
var Quote = &Form{
	Name: "quote",
	Path: routes.SubmitQuote,
	Schema: v.Schema{
		nameField("name", "Name"),
		emailField(),
		phoneField(),
		v.F("company", "Company", v.Optional(), v.Trimmed(), v.MaxLength(100)),
		detailsField(),
	},
	SuccessMessage: "Quote submitted successfully",
	EmailField:     "email",
	LogFields:      []string{"name", "company"},
	AdminSubject: func(r v.Record) string {
		return "New Quote Request from " + r.Get("name")
	},
	AckSubject: func(v.Record) string {
		return "We received your quote request"
	},
	Render: func(r v.Record) (Rendered, error) {
		return renderPair(quoteAdminPage, quoteAckPage, "New Quote Request", "Thank you for your request!", r, nil)
	},
}

// Rules shared by several forms.

func nameField(name, label string) v.Field {
	return v.F(name, label, v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(100))
}

func personNameField(name, label string) v.Field {
	return v.F(name, label, v.Required(), v.Trimmed(), v.MinLength(1), v.MaxLength(50))
}

func emailField() v.Field {
	return v.F("email", "Email", v.Required(), v.Email())
}

func phoneField() v.Field {
	return v.F("phone", "Phone", v.Required(), v.Trimmed(),
		v.MatchesPattern(v.PhonePattern, "%s must be a valid phone number"))
}

func cityField() v.Field {
	return v.F("city", "City", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(100))
}

func yearsField() v.Field {
	return v.F("yearsOfExperience", "Years of experience", v.Required(), v.Trimmed(), v.Digits(), v.MaxLength(2))
}

func detailsField() v.Field {
	return v.F("details", "Details", v.Required(), v.Trimmed(), v.MinLength(10), v.MaxLength(2000))
}
