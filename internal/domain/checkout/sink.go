package checkout

import "context"

// Delivery describes where a composed message went.
type Delivery struct {
	// URL is a link the customer opens to send the pre-filled message. Empty
	// when the sink transmitted the message itself.
	URL string
}

// Sink transmits a composed order message. Sinks are fire-and-forget: no
// reply from the recipient is awaited.
type Sink interface {
	Deliver(ctx context.Context, message string) (Delivery, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, message string) (Delivery, error)

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, message string) (Delivery, error) {
	return f(ctx, message)
}
