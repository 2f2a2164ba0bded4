package notifications

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservenow/backend/pkg/utils"
)

func TestWhatsAppLinkBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		message  string
		wantPath string
	}{
		{
			name:     "local number",
			phone:    "0123456789",
			message:  "hello",
			wantPath: "/60123456789",
		},
		{
			name:     "international with separators",
			phone:    "+60 12-345 6789",
			message:  "hello",
			wantPath: "/60123456789",
		},
	}

	builder := NewWhatsAppLinkBuilder("", utils.MalaysianMobile)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := builder.Build(tt.phone, tt.message)

			parsed, err := url.Parse(link)
			require.NoError(t, err)
			assert.Equal(t, "wa.me", parsed.Host)
			assert.Equal(t, tt.wantPath, parsed.Path)
			assert.Equal(t, tt.message, parsed.Query().Get("text"))
		})
	}
}

func TestWhatsAppLinkBuilder_EncodesMessage(t *testing.T) {
	builder := NewWhatsAppLinkBuilder("https://wa.example.test/", utils.MalaysianMobile)
	message := "🍽️ RESERVATION REQUEST\n\nParty Size: 2 people & kids+1?"

	link := builder.Build("0123456789", message)

	assert.True(t, strings.HasPrefix(link, "https://wa.example.test/60123456789?text="))
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, "\n")
	assert.Contains(t, link, "Party%20Size%3A%202%20people%20%26%20kids%2B1%3F")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, message, parsed.Query().Get("text"))
}

func TestEncodeText(t *testing.T) {
	assert.Equal(t, "a%20b", EncodeText("a b"))
	assert.Equal(t, "a%2Bb", EncodeText("a+b"))
	assert.Equal(t, "line%0Anext", EncodeText("line\nnext"))
}
