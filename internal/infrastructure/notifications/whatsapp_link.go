package notifications

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/reservenow/backend/pkg/utils"
)

// DefaultWhatsAppBase is the click-to-chat endpoint
const DefaultWhatsAppBase = "https://wa.me"

// WhatsAppLinkBuilder builds click-to-chat links that open WhatsApp with a
// pre-filled message to a restaurant.
type WhatsAppLinkBuilder struct {
	baseURL string
	phone   utils.PhoneRules
}

// NewWhatsAppLinkBuilder creates a link builder. An empty baseURL uses
// DefaultWhatsAppBase.
func NewWhatsAppLinkBuilder(baseURL string, phone utils.PhoneRules) *WhatsAppLinkBuilder {
	if baseURL == "" {
		baseURL = DefaultWhatsAppBase
	}
	return &WhatsAppLinkBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		phone:   phone,
	}
}

// Build returns <base>/<normalized number>?text=<percent-encoded message>
func (b *WhatsAppLinkBuilder) Build(phoneNumber, message string) string {
	return fmt.Sprintf("%s/%s?text=%s", b.baseURL, b.phone.Normalize(phoneNumber), EncodeText(message))
}

// EncodeText percent-encodes s for a query value. Spaces become %20, not +,
// since the WhatsApp clients do not decode + as a space.
func EncodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
