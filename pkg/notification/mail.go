package notification

import (
	"fmt"
	"net/smtp"
	"strings"
)

type MailConfig struct {
	Host     string
	Port     int64
	Username string
	Password string
	From     string
}

// MailNotification sends the transactional mails AlertShip needs: account
// verification, password reset and outage alerts for subscribers.
type MailNotification struct {
	cfg  MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailNotification(cfg MailConfig) *MailNotification {
	return &MailNotification{cfg: cfg, send: smtp.SendMail}
}

func (m *MailNotification) deliver(to, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mail host not configured")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

func (m *MailNotification) SendVerificationEmail(to, name, link string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to AlertShip. Please verify your email address:\n\n%s\n\nIf you did not sign up, ignore this mail.\n",
		name, link)
	return m.deliver(to, "Verify your AlertShip email", body)
}

func (m *MailNotification) SendPasswordResetEmail(to, link string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your AlertShip account.\n\nReset it here:\n\n%s\n\nIf this wasn't you, ignore this mail.\n",
		link)
	return m.deliver(to, "Reset your AlertShip password", body)
}

func (m *MailNotification) SendOutageAlertEmail(to, outageType, locality, city string) error {
	body := fmt.Sprintf(
		"A new %s outage was reported near you:\n\n%s, %s\n\nOpen AlertShip to see details and updates.\n",
		outageType, locality, city)
	return m.deliver(to, fmt.Sprintf("New %s outage reported in %s", outageType, city), body)
}
