package subscriber

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

var ErrPubsubInitialization = errors.New("pubsub initialization error")

// PayloadProcessor handles a decoded notification payload
type PayloadProcessor interface {
	Process(ctx context.Context, data []byte) domain.Result
}

// Receiver is satisfied by *pubsub.Subscription
type Receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Subscriber pulls alert notifications and feeds them to the processor.
// Every message is acked exactly once whatever the result, there are no
// redeliveries.
type Subscriber struct {
	receiver  Receiver
	processor PayloadProcessor
	logging   *logger.Logging
}

// New creates a subscriber feeding messages from receiver to processor
func New(receiver Receiver, processor PayloadProcessor, lg *logger.Logging) *Subscriber {
	return &Subscriber{
		receiver:  receiver,
		processor: processor,
		logging:   lg,
	}
}

// NewPubsubClient creates the client used to open the subscription.
func NewPubsubClient(ctx context.Context, projectID string, lg *logger.Logging) (*pubsub.Client, error) {
	ps, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		lg.Logger(ctx).Errorf("%s: %s", ErrPubsubInitialization, err)
		return nil, fmt.Errorf("%w: %w", ErrPubsubInitialization, err)
	}

	return ps, nil
}

// Run blocks until ctx is done or the subscription fails.
func (s *Subscriber) Run(ctx context.Context) error {
	if err := s.receiver.Receive(ctx, s.handle); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("pubsub receive: %w", err)
	}

	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg *pubsub.Message) {
	defer msg.Ack()

	l := s.logging.NewLogger("")
	l.SetLabel("message_id", msg.ID)

	res := s.processor.Process(logger.NewContext(ctx, l), msg.Data)
	if !res.OK() {
		l.Warningf("message %s not acted on: %d %s", msg.ID, res.Status, res.Body)
	}
}
