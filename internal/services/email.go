package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pinpoint/internal/domain"
)

const welcomeTemplate = "welcome"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService renders domain messages with renderer and delivers them through mailer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return errors.New("welcome message: no data")
	}
	return s.deliver(ctx, data.Email, welcomeTemplate, data)
}

func (s *emailService) deliver(ctx context.Context, to, template string, data any) error {
	subject, html, text, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s email: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, html, text); err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email delivered", "template", template, "to", to)
	return nil
}
