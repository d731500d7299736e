package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/bigbrownking/taubago/pkg/logger"
)

type EmailService interface {
	SendSignUpConfirmation(toEmail, name string) error
	SendPasswordReset(toEmail, name, token string) error
	SendPasswordChanged(toEmail, name string) error
}

type sendgridEmailService struct {
	client      *sendgrid.Client
	fromEmail   string
	fromName    string
	frontendURL string
	log         *logger.Logger
}

func NewEmailService(apiKey, fromEmail, fromName, frontendURL string, log *logger.Logger) EmailService {
	return &sendgridEmailService{
		client:      sendgrid.NewSendClient(apiKey),
		fromEmail:   fromEmail,
		fromName:    fromName,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (s *sendgridEmailService) SendSignUpConfirmation(toEmail, name string) error {
	subject := "TauBaGo - Добро пожаловать!"
	plain := fmt.Sprintf("Здравствуйте, %s! Ваш аккаунт успешно создан.", name)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Добро пожаловать в TauBaGo, %s!</h2>
			<p>Ваш аккаунт успешно создан.</p>
			<p>Теперь вы можете войти и начать занятия с ребенком.</p>
			<p><a href="%s/login" style="background: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Войти в аккаунт</a></p>
			<hr/>
			<p style="color: #999; font-size: 12px;">Если вы не создавали этот аккаунт, проигнорируйте это письмо.</p>
		</div>`, name, s.frontendURL)

	return s.send(toEmail, subject, plain, html)
}

func (s *sendgridEmailService) SendPasswordReset(toEmail, name, token string) error {
	subject := "TauBaGo - Сброс пароля"
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	plain := fmt.Sprintf("Здравствуйте, %s! Для сброса пароля перейдите по ссылке: %s (действительна 1 час)", name, resetLink)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Сброс пароля</h2>
			<p>Здравствуйте, %s!</p>
			<p>Мы получили запрос на сброс пароля. Ссылка действительна 1 час.</p>
			<p><a href="%s" style="background: #2196F3; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Сбросить пароль</a></p>
			<hr/>
			<p style="color: #999; font-size: 12px;">Если вы не запрашивали сброс пароля, проигнорируйте это письмо.</p>
		</div>`, name, resetLink)

	return s.send(toEmail, subject, plain, html)
}

func (s *sendgridEmailService) SendPasswordChanged(toEmail, name string) error {
	subject := "TauBaGo - Пароль изменен"
	plain := fmt.Sprintf("Здравствуйте, %s! Ваш пароль был успешно изменен.", name)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Пароль изменен</h2>
			<p>Здравствуйте, %s!</p>
			<p>Ваш пароль был успешно изменен.</p>
			<p style="color: #999; font-size: 12px;">Если это были не вы, немедленно свяжитесь с поддержкой.</p>
		</div>`, name)

	return s.send(toEmail, subject, plain, html)
}

func (s *sendgridEmailService) send(toEmail, subject, plain, html string) error {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail("", toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d for %s", resp.StatusCode, toEmail)
	}

	s.log.Infow("email sent", "to", toEmail, "subject", subject)
	return nil
}
