package telegram

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/panel-storefront/internal/domain/checkout"
)

// DefaultAPIURL is the Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

var _ checkout.Sink = (*BotSink)(nil)

// BotConfig configures a BotSink.
type BotConfig struct {
	APIURL string
	Token  string
	ChatID string
	// Client defaults to an otelhttp-instrumented client.
	Client *http.Client
}

// BotSink posts order messages to a chat through the Bot API sendMessage call.
type BotSink struct {
	client   *http.Client
	endpoint string
	chatID   string
}

// NewBotSink creates a BotSink.
func NewBotSink(cfg BotConfig) (*BotSink, error) {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, errors.New("telegram bot token and chat id are required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &BotSink{
		client:   cfg.Client,
		endpoint: strings.TrimSuffix(cfg.APIURL, "/") + "/bot" + cfg.Token + "/sendMessage",
		chatID:   cfg.ChatID,
	}, nil
}

// Deliver sends message to the configured chat. The returned Delivery has no
// URL since nothing is left for the customer to open.
func (s *BotSink) Deliver(ctx context.Context, message string) (checkout.Delivery, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("chat_id")
	e.Str(s.chatID)
	e.FieldStart("text")
	e.Str(message)
	e.ObjEnd()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(e.Bytes()))
	if err != nil {
		return checkout.Delivery{}, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return checkout.Delivery{}, errors.Wrap(err, "send message")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return checkout.Delivery{}, errors.Wrap(err, "read response")
	}

	ok, description, err := decodeResult(body)
	if err != nil {
		return checkout.Delivery{}, errors.Wrapf(err, "decode response (status %d)", resp.StatusCode)
	}
	if !ok {
		return checkout.Delivery{}, errors.Errorf("telegram rejected message: %s", description)
	}

	zctx.From(ctx).Info("Order message sent", zap.String("chat_id", s.chatID))
	return checkout.Delivery{}, nil
}

// decodeResult reads the ok flag and error description of a Bot API reply.
func decodeResult(body []byte) (ok bool, description string, err error) {
	d := jx.DecodeBytes(body)
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "ok":
			v, err := d.Bool()
			ok = v
			return err
		case "description":
			v, err := d.Str()
			description = v
			return err
		default:
			return d.Skip()
		}
	})
	return ok, description, err
}
