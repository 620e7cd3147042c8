package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func ReminderHTML(username string, due int) string {
	noun := "cards"
	if due == 1 {
		noun = "card"
	}
	return fmt.Sprintf(`<p>Hi %s,</p><p>You have <b style="font-size:18px;">%d</b> flash%s waiting for review today.</p><p>A few minutes now keeps them fresh.</p>`,
		html.EscapeString(username), due, noun)
}
