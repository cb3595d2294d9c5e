package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveIssued(ctx context.Context, event *LinkIssuedEvent) error
	SaveResolved(ctx context.Context, event *LinkResolvedEvent) error
	SaveVerified(ctx context.Context, event *LinkVerifiedEvent) error
}

// Fanout writes every event to each store in order and stops at the first error.
type Fanout []Store

func (f Fanout) SaveIssued(ctx context.Context, event *LinkIssuedEvent) error {
	for _, s := range f {
		if err := s.SaveIssued(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (f Fanout) SaveResolved(ctx context.Context, event *LinkResolvedEvent) error {
	for _, s := range f {
		if err := s.SaveResolved(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (f Fanout) SaveVerified(ctx context.Context, event *LinkVerifiedEvent) error {
	for _, s := range f {
		if err := s.SaveVerified(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
