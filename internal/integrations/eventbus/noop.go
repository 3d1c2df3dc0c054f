package eventbus

import "context"

// NoopPublisher используется, когда брокер не настроен
type NoopPublisher struct{}

func (NoopPublisher) PublishSlotBooked(context.Context, SlotBookedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
