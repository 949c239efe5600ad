package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinpoint/internal/domain"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.name = name
	if f.err != nil {
		return "", "", "", f.err
	}
	return "Welcome", "<p>hi</p>", "hi", nil
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	ctx := context.Background()
	data := &domain.WelcomeMessageEmailData{Email: "club@uni.edu", FirstName: "Asha", Role: domain.RoleOrganizer}

	t.Run("renders welcome and sends", func(t *testing.T) {
		mailer, renderer := &fakeMailer{}, &fakeRenderer{}
		svc := NewEmailService(mailer, renderer, discardLogger())

		require.NoError(t, svc.SendWelcomeMessage(ctx, data))
		assert.Equal(t, "welcome", renderer.name)
		assert.Equal(t, "club@uni.edu", mailer.to)
		assert.Equal(t, "Welcome", mailer.subject)
		assert.Equal(t, "hi", mailer.text)
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, discardLogger())
		require.Error(t, svc.SendWelcomeMessage(ctx, nil))
	})

	t.Run("render failure", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeRenderer{err: errors.New("missing template")}, discardLogger())
		err := svc.SendWelcomeMessage(ctx, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render welcome email")
		assert.Empty(t, mailer.to)
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{err: errors.New("throttled")}, &fakeRenderer{}, discardLogger())
		err := svc.SendWelcomeMessage(ctx, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})
}
