package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

func TestTemplateRenderer_ConferenceCreated(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.ConferenceCreatedEmailData{
		Email:          "o@example.com",
		ConferenceInfo: "Name: <GopherCon>\nCity: Berlin",
	}

	subject, html, text, err := r.Render("conference_created", data)
	require.NoError(t, err)
	assert.Equal(t, "You created a new Conference!", subject)
	assert.Contains(t, text, "Hi, you have created a following conference:")
	assert.Contains(t, text, "Name: <GopherCon>")
	assert.Contains(t, html, "Name: &lt;GopherCon&gt;")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("welcome", nil)
	assert.Error(t, err)
}
