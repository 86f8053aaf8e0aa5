// server/internal/notify/templates.go
package notify

import (
	"fmt"

	"gatepass-api-server/internal/models"
)

func destination(req *models.Request) string {
	if req.IsNonSltPlace {
		return fmt.Sprintf("%s (Non-SLT)", req.CompanyName)
	}
	return req.InLocation
}

// StageActionRequired is the email sent to the next actor when a request is
// handed to their stage.
func StageActionRequired(stage models.Stage, req *models.Request) (subject, body string) {
	subject = fmt.Sprintf("Gate Pass %s - %s approval required", req.ReferenceNumber, stage.ReportLabel())
	body = fmt.Sprintf(
		`<p>A gate pass request is waiting for your approval.</p>
<ul>
<li>Reference number: <b>%s</b></li>
<li>From: %s</li>
<li>Destination: %s</li>
<li>Requested by: %s</li>
</ul>
<p>Please log in to the Gate Pass system to act on it.</p>`,
		req.ReferenceNumber, req.OutLocation, destination(req), req.EmployeeServiceNo)
	return subject, body
}

// RequestRejected is the email fanned out to every already-involved party
// when any stage rejects.
func RequestRejected(rej *models.Rejection, req *models.Request, comment string) (subject, body string) {
	subject = fmt.Sprintf("Gate Pass %s - rejected", req.ReferenceNumber)
	body = fmt.Sprintf(
		`<p>Gate pass request <b>%s</b> has been rejected.</p>
<ul>
<li>Rejected by: %s (%s)</li>
<li>Reason: %s</li>
<li>From: %s</li>
<li>Destination: %s</li>
</ul>`,
		req.ReferenceNumber, rej.By, rej.ServiceNo, comment, req.OutLocation, destination(req))
	return subject, body
}

// RequestReceived is the email sent to the original requester when the
// receiver confirms the goods arrived.
func RequestReceived(req *models.Request) (subject, body string) {
	subject = fmt.Sprintf("Gate Pass %s - received at %s", req.ReferenceNumber, req.InLocation)
	body = fmt.Sprintf(
		`<p>Your gate pass request <b>%s</b> has been received at %s.</p>`,
		req.ReferenceNumber, req.InLocation)
	return subject, body
}
