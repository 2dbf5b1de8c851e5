package forms

import (
	"github.com/poofware/submission-service/internal/routes"
	v "github.com/poofware/submission-service/internal/validation"
)

const guardAdminContent = `<ul>
      <li><strong>Full name:</strong> {{.R.fullName}}</li>
      <li><strong>Email:</strong> {{.R.email}}</li>
      <li><strong>Phone:</strong> {{.R.phone}}</li>
      <li><strong>City:</strong> {{.R.city}}</li>
      <li><strong>Security license:</strong> {{.R.license}}</li>
      <li><strong>Years of experience:</strong> {{.R.yearsOfExperience}}</li>
    </ul>
    <p><strong>About the applicant:</strong></p>
    <div class="details">{{.R.details}}</div>`

const guardAckContent = `<p>Hello {{.R.fullName}},</p>
      <p>Thank you for applying to join {{.Organization}} as a security guard. We've received your application and our recruitment team will review it.</p>
      <p>If your profile matches an open position in {{.R.city}}, we will contact you at this address or by phone to arrange an interview.</p>`

var (
	guardAdminPage = mustPage(adminLayout, guardAdminContent)
	guardAckPage   = mustPage(ackLayout, guardAckContent)
)

// Guard is the security guard job application form.
var Guard = &Form{
	Name: "guard",
	Path: routes.SubmitGuard,
	Schema: v.Schema{
		nameField("fullName", "Full name"),
		emailField(),
		phoneField(),
		cityField(),
		v.F("license", "License", v.Required(), v.Trimmed(), v.MinLength(2), v.MaxLength(50)),
		yearsField(),
		detailsField(),
	},
	SuccessMessage: "Application submitted successfully",
	EmailField:     "email",
	LogFields:      []string{"fullName", "city", "yearsOfExperience"},
	AdminSubject: func(r v.Record) string {
		return "New Security Guard Application: " + r.Get("fullName")
	},
	AckSubject: func(v.Record) string {
		return "Your application has been received"
	},
	Render: func(r v.Record) (Rendered, error) {
		return renderPair(guardAdminPage, guardAckPage, "New Security Guard Application", "Application received", r, nil)
	},
}
