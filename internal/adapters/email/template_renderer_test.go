package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pinpoint/internal/domain"
)

func TestTemplateRenderer_Welcome(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	tests := []struct {
		name         string
		data         *domain.WelcomeMessageEmailData
		wantContains string
		wantMissing  string
	}{
		{
			name:         "organizer with organization",
			data:         &domain.WelcomeMessageEmailData{Email: "club@example.com", FirstName: "Asha", Role: domain.RoleOrganizer, Organization: "Robotics Club"},
			wantContains: "publish events for Robotics Club",
			wantMissing:  "Browse the map",
		},
		{
			name:         "student",
			data:         &domain.WelcomeMessageEmailData{Email: "s@example.com", FirstName: "Ravi", Role: domain.RoleStudent},
			wantContains: "Browse the map",
			wantMissing:  "publish events",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html, text, err := r.Render("welcome", tt.data)
			require.NoError(t, err)
			assert.Equal(t, "Welcome to Pinpoint, "+tt.data.FirstName, subject)
			assert.Contains(t, text, tt.wantContains)
			assert.NotContains(t, text, tt.wantMissing)
			assert.Contains(t, html, "<p>Hi "+tt.data.FirstName+",</p>")
		})
	}
}

func TestTemplateRenderer_HTMLEscapes(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, html, _, err := r.Render("welcome", &domain.WelcomeMessageEmailData{FirstName: "<script>", Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("missing", nil)
	assert.Error(t, err)
}
