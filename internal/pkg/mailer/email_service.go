package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendShareLink(toEmail, code, link, senderName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendShareLink(toEmail, code, link, senderName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s shared a clipboard with you", senderName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A clipboard was shared with you</h2>
			<p>%s shared clipboard <strong>%s</strong> with you. Open it here:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open clipboard</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>If you weren't expecting this, you can ignore this email.</p>
		</div>
	`, senderName, code, link, link)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send share link to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Share link sent to %s\n", toEmail)
	return nil
}
