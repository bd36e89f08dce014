package notify

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/lakeclub/clubnotify/pkg/email"
)

// clubName appears in every email footer.
const clubName = "Lake Elementary Pokémon Club"

const dateTimeLayout = "Monday, January 2, 2006 at 3:04 PM"

// mailContent is the data every notification email renders from: a greeting,
// body paragraphs, and an optional bullet list of changed fields.
type mailContent struct {
	Greeting string
	Lines    []string
	Changes  []string
	Footer   string
}

var textBody = texttemplate.Must(texttemplate.New("text").Parse(
	`{{.Greeting}}

{{range .Lines}}{{.}}
{{end}}{{if .Changes}}
What changed:
{{range .Changes}}  - {{.}}
{{end}}{{end}}
{{.Footer}}
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #1f2937;">
  <p>{{.Greeting}}</p>
  {{range .Lines}}<p>{{.}}</p>
  {{end}}{{if .Changes}}<p><strong>What changed:</strong></p>
  <ul>
    {{range .Changes}}<li>{{.}}</li>
    {{end}}</ul>
  {{end}}<p style="color: #6b7280; font-size: 13px;">{{.Footer}}</p>
</body>
</html>
`))

// renderMessage builds the outgoing email for one notice and recipient.
func renderMessage(n Notice, rcpt User) (email.SendEmailParams, error) {
	content := mailContent{
		Greeting: fmt.Sprintf("Hi %s,", rcpt.FirstName),
		Footer:   clubName,
	}

	subject := noticeSubject(n)

	switch v := n.(type) {
	case EventPublished:
		content.Lines = eventLines(v.Event,
			"A new event has been scheduled:")
	case EventCancelled:
		content.Lines = []string{
			fmt.Sprintf("The event %q scheduled for %s has been cancelled.",
				v.Event.Title, v.Event.StartsAt.Format(dateTimeLayout)),
			"We apologize for any inconvenience.",
		}
	case EventUpdated:
		content.Lines = eventLines(v.Event,
			fmt.Sprintf("The event %q has been updated. Here are the current details:", v.Event.Title))
		content.Changes = v.Changed.Humanize()
	case AttendanceMarked:
		content.Lines = []string{
			fmt.Sprintf("%s was marked %s for %q on %s.",
				v.Student.FullName(), v.Attendance.StatusLabel(),
				v.Event.Title, v.Attendance.MarkedAt.Format(dateTimeLayout)),
		}
	case StudentLinked:
		content.Lines = []string{
			fmt.Sprintf("%s has been added to your account.", v.Student.FullName()),
			"You will now receive updates about their attendance and profile.",
		}
	case StudentUnlinked:
		content.Lines = []string{
			fmt.Sprintf("%s has been removed from your account.", v.Student.FullName()),
			"You will no longer receive updates about this student.",
		}
	case NewParentLinked:
		content.Lines = []string{
			fmt.Sprintf("%s has been added as a parent on %s's account.",
				v.NewParent.FullName(), v.Student.FullName()),
		}
	case ParentUnlinked:
		content.Lines = []string{
			fmt.Sprintf("%s is no longer a parent on %s's account.",
				v.UnlinkedParent.FullName(), v.Student.FullName()),
		}
	case StudentProfileUpdated:
		content.Lines = []string{
			fmt.Sprintf("%s's profile has been updated.", v.Student.FullName()),
		}
		content.Changes = v.Changed.Humanize()
	case UserProfileUpdated:
		if v.ByAdmin && v.Admin != nil {
			content.Lines = []string{
				fmt.Sprintf("Your profile was updated by %s.", v.Admin.FullName()),
				"If you did not expect this change, please contact the club.",
			}
		} else if v.ByAdmin {
			content.Lines = []string{
				"Your profile was updated by an administrator.",
				"If you did not expect this change, please contact the club.",
			}
		} else {
			content.Lines = []string{"Your profile has been updated."}
		}
		content.Changes = v.Changed.Humanize()
	default:
		return email.SendEmailParams{}, fmt.Errorf("%w: %T", ErrInvalidNotice, n)
	}

	var text, html strings.Builder
	if err := textBody.Execute(&text, content); err != nil {
		return email.SendEmailParams{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlBody.Execute(&html, content); err != nil {
		return email.SendEmailParams{}, fmt.Errorf("render html body: %w", err)
	}

	return email.SendEmailParams{
		SendTo:   rcpt.EmailAddress,
		Subject:  subject,
		BodyText: text.String(),
		BodyHTML: html.String(),
		Tag:      string(n.Category()),
	}, nil
}

// noticeSubject returns the subject line for a notice.
func noticeSubject(n Notice) string {
	switch v := n.(type) {
	case EventPublished:
		return fmt.Sprintf("🌟 New Event: %s", v.Event.Title)
	case EventCancelled:
		return fmt.Sprintf("⚠️ Event Cancelled: %s", v.Event.Title)
	case EventUpdated:
		return fmt.Sprintf("📅 Event Updated: %s", v.Event.Title)
	case AttendanceMarked:
		return fmt.Sprintf("✅ Attendance Updated for %s", v.Student.FullName())
	case StudentLinked:
		return fmt.Sprintf("👨‍👩‍👧‍👦 Student Added to Your Account: %s", v.Student.FullName())
	case StudentUnlinked:
		return fmt.Sprintf("👋 Student Removed from Your Account: %s", v.Student.FullName())
	case NewParentLinked:
		return fmt.Sprintf("👨‍👩‍👧‍👦 New Parent Added to %s's Account", v.Student.FullName())
	case ParentUnlinked:
		return fmt.Sprintf("👋 Parent Removed from %s's Account", v.Student.FullName())
	case StudentProfileUpdated:
		return fmt.Sprintf("📝 Profile Updated for %s", v.Student.FullName())
	case UserProfileUpdated:
		if v.ByAdmin {
			return "🔒 Your Profile Was Updated by an Administrator"
		}
		return "📝 Your Profile Has Been Updated"
	default:
		return ""
	}
}

// eventLines renders the standard event detail block used by the new-event
// and event-updated emails.
func eventLines(ev Event, intro string) []string {
	lines := []string{
		intro,
		fmt.Sprintf("Event: %s", ev.Title),
		fmt.Sprintf("Starts: %s", ev.StartsAt.Format(dateTimeLayout)),
	}
	if !ev.EndsAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Ends: %s", ev.EndsAt.Format(dateTimeLayout)))
	}
	if loc := ev.Location(); loc != "" {
		lines = append(lines, fmt.Sprintf("Where: %s", loc))
	}
	if ev.Description != "" {
		lines = append(lines, ev.Description)
	}
	return lines
}
