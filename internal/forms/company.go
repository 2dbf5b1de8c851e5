package forms

import (
	"github.com/poofware/submission-service/internal/routes"
	v "github.com/poofware/submission-service/internal/validation"
)

const companyAdminContent = `<ul>
      <li><strong>Company:</strong> {{.R.companyName}}</li>
      <li><strong>Contact:</strong> {{.R.firstName}} {{.R.lastName}}</li>
      <li><strong>Email:</strong> {{.R.email}}</li>
      <li><strong>Phone:</strong> {{.R.phone}}</li>
      <li><strong>City / Province:</strong> {{.R.city}}</li>
      <li><strong>Guard type / Area:</strong> {{.R.securityGuardType}}</li>
      <li><strong>Number of guards:</strong> {{.R.numberOfGuards}}</li>
      <li><strong>Service:</strong> {{.R.service}}</li>
    </ul>
    <p><strong>Details:</strong></p>
    <div class="details">{{.R.details}}</div>`

const companyAckContent = `<p>Hello {{.R.firstName}},</p>
      <p>Thank you for contacting {{.Organization}} on behalf of {{.R.companyName}}. We've received your request for {{.R.numberOfGuards}} guard(s) ({{.R.service}}).</p>
      <p>An account manager will reach out shortly to discuss coverage, scheduling and pricing.</p>`

var (
	companyAdminPage = mustPage(adminLayout, companyAdminContent)
	companyAckPage   = mustPage(ackLayout, companyAckContent)
)

// Company is the company / fleet service request form.
var Company = &Form{
	Name: "company",
	Path: routes.SubmitCompany,
	Schema: v.Schema{
		v.F("companyName", "Company name", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(150)),
		emailField(),
		phoneField(),
		personNameField("firstName", "First name"),
		personNameField("lastName", "Last name"),
		cityField().Or("cityProvince"),
		v.F("securityGuardType", "Security guard type", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(100)).Or("majorArea"),
		v.F("numberOfGuards", "Number of guards", v.Required(), v.Trimmed(), v.Digits(), v.MaxLength(5)),
		v.F("service", "Service", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(100)),
		detailsField(),
	},
	SuccessMessage: "Request submitted successfully",
	EmailField:     "email",
	LogFields:      []string{"companyName", "city", "numberOfGuards", "service"},
	AdminSubject: func(r v.Record) string {
		return "New Company Service Request: " + r.Get("companyName")
	},
	AckSubject: func(v.Record) string {
		return "We received your service request"
	},
	Render: func(r v.Record) (Rendered, error) {
		return renderPair(companyAdminPage, companyAckPage, "New Company Service Request", "Request received", r, nil)
	},
}
