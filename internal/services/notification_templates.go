package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/huangang/venturelink/internal/config"
)

// Templates renders the email bodies sent by the platform.
type Templates struct {
	AppName     string
	FrontendURL string
}

func NewTemplates(cfg *config.AppConfig) *Templates {
	name := cfg.Name
	if name == "" {
		name = "VentureLink"
	}
	return &Templates{AppName: name, FrontendURL: strings.TrimRight(cfg.FrontendURL, "/")}
}

func (t *Templates) wrap(title string, paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body style="font-family: Arial, sans-serif;">`)
	sb.WriteString("<h2>" + html.EscapeString(title) + "</h2>")
	for _, p := range paragraphs {
		sb.WriteString("<p>" + p + "</p>")
	}
	sb.WriteString(`<hr><p style="color: #888; font-size: 12px;">` + html.EscapeString(t.AppName) + "</p>")
	sb.WriteString("</body></html>")
	return sb.String()
}

func (t *Templates) link(path, label string) string {
	return fmt.Sprintf(`<a href="%s%s">%s</a>`, html.EscapeString(t.FrontendURL), html.EscapeString(path), html.EscapeString(label))
}

// ConnectionInvite goes to an investor a founder invited by email.
func (t *Templates) ConnectionInvite(to, startupName, mappingID string) *Notification {
	return &Notification{
		Kind:    KindConnectionInvite,
		To:      to,
		Subject: fmt.Sprintf("%s invited you to connect on %s", startupName, t.AppName),
		Body: t.wrap("You have a new connection invitation",
			fmt.Sprintf("<b>%s</b> would like to connect with you.", html.EscapeString(startupName)),
			t.link("/investor/connections/"+mappingID+"/accept", "Accept invitation")+" | "+
				t.link("/investor/connections/"+mappingID+"/reject", "Decline"),
		),
	}
}

// ConnectionRequest goes to a founder when an investor asks to connect.
func (t *Templates) ConnectionRequest(to, firmName, mappingID string) *Notification {
	return &Notification{
		Kind:    KindConnectionRequest,
		To:      to,
		Subject: fmt.Sprintf("%s requested to connect with your startup", firmName),
		Body: t.wrap("New connection request",
			fmt.Sprintf("<b>%s</b> has requested a connection with your startup.", html.EscapeString(firmName)),
			t.link("/startup/connections/"+mappingID+"/approve", "Approve")+" | "+
				t.link("/startup/connections/"+mappingID+"/reject", "Reject"),
		),
	}
}

// ConnectionStatus tells the other side that actor approved or accepted.
func (t *Templates) ConnectionStatus(fromEmail, fromName, to, startupName, action, actorRole string) *Notification {
	return &Notification{
		Kind:    KindConnectionStatus,
		To:      to,
		ReplyTo: fromEmail,
		Subject: fmt.Sprintf("Connection %s: %s", action, startupName),
		Body: t.wrap("Connection "+action,
			fmt.Sprintf("%s (%s) has %s the connection for <b>%s</b>.",
				html.EscapeString(displayName(fromName, fromEmail)), html.EscapeString(actorRole),
				html.EscapeString(action), html.EscapeString(startupName)),
			"You are now connected.",
		),
	}
}

// ConnectionRejected tells the other side a pending link was declined.
func (t *Templates) ConnectionRejected(to, byName, startupName string, byFounder bool) *Notification {
	what := "invitation"
	if byFounder {
		what = "connection request"
	}
	return &Notification{
		Kind:    KindConnectionRejected,
		To:      to,
		Subject: fmt.Sprintf("Your %s for %s was declined", what, startupName),
		Body: t.wrap("Connection declined",
			fmt.Sprintf("%s has declined the %s for <b>%s</b>.",
				html.EscapeString(displayName(byName, "The other party")), what, html.EscapeString(startupName)),
		),
	}
}

func (t *Templates) OTP(to, otp string) *Notification {
	return &Notification{
		Kind:    KindOTP,
		To:      to,
		Subject: fmt.Sprintf("Your %s verification code", t.AppName),
		Body: t.wrap("Verify your email",
			fmt.Sprintf("Your verification code is <b>%s</b>.", html.EscapeString(otp)),
			"The code expires in 10 minutes.",
		),
	}
}

func (t *Templates) PasswordReset(to, token string) *Notification {
	return &Notification{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: fmt.Sprintf("Reset your %s password", t.AppName),
		Body: t.wrap("Password reset",
			"We received a request to reset your password.",
			t.link("/reset-password?token="+token, "Reset password"),
			"The link is valid for 1 hour. If you did not ask for this, ignore this email.",
		),
	}
}

// TimelyReport carries a founder's report PDF to one investor.
func (t *Templates) TimelyReport(to, founderEmail, startupName, title, pdfName, pdfPath string) *Notification {
	return &Notification{
		Kind:           KindTimelyReport,
		To:             to,
		ReplyTo:        founderEmail,
		Subject:        fmt.Sprintf("%s: %s", startupName, title),
		AttachmentName: pdfName,
		AttachmentPath: pdfPath,
		Body: t.wrap(title,
			fmt.Sprintf("<b>%s</b> shared a new investor update with you.", html.EscapeString(startupName)),
			"The full report is attached as a PDF.",
		),
	}
}

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
