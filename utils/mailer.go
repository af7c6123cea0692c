package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// MailerConfigured reports whether the SMTP transport has enough
// configuration to attempt a send.
func MailerConfigured() bool {
	return os.Getenv("SMTP_HOST") != "" && os.Getenv("SMTP_PORT") != ""
}

func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	sender := os.Getenv("SMTP_FROM")
	if sender == "" {
		sender = from
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := []byte(
		"From: " + sender + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body + "\r\n")

	auth := smtp.PlainAuth("", from, pass, host)
	return smtp.SendMail(addr, auth, sender, []string{to}, msg)
}
