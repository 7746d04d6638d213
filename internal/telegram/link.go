// Package telegram delivers order messages to a Telegram chat, either as a
// pre-filled t.me link the customer opens or through the Bot API.
package telegram

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/panel-storefront/internal/domain/checkout"
)

// DefaultLinkBase is the public Telegram deep-link host.
const DefaultLinkBase = "https://t.me"

var _ checkout.Sink = (*LinkSink)(nil)

// LinkSink turns a message into a chat link with pre-filled text. It performs
// no I/O; the customer's client opens the link.
type LinkSink struct {
	base   string
	handle string
}

// NewLinkSink creates a LinkSink for the given chat handle (without "@").
func NewLinkSink(handle string) *LinkSink {
	return &LinkSink{base: DefaultLinkBase, handle: strings.TrimPrefix(handle, "@")}
}

// Deliver returns the chat link for message.
func (s *LinkSink) Deliver(_ context.Context, message string) (checkout.Delivery, error) {
	if s.handle == "" {
		return checkout.Delivery{}, errors.New("telegram handle is not configured")
	}
	return checkout.Delivery{URL: s.base + "/" + s.handle + "?text=" + EncodeText(message)}, nil
}

// componentUnescape turns url.QueryEscape output into encodeURIComponent
// form: spaces are %20 and the marks !'()* stay literal.
var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeText percent-encodes message for a URL query value the way chat
// share links expect. Only letters, digits and -_.!~*'() are left as is.
func EncodeText(message string) string {
	return componentUnescape.Replace(url.QueryEscape(message))
}
