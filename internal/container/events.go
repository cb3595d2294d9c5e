package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/analytics"
	analyticsstore "github.com/serroba/redirect-gateway/internal/analytics/store"
	"github.com/serroba/redirect-gateway/internal/handlers"
	"github.com/serroba/redirect-gateway/internal/messaging"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"go.uber.org/zap"
)

const memoryBuffer = 256

// PublisherGroupPackage provides the analytics publisher and the typed publish functions
// the handlers use.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			publisher message.Publisher
			err       error
		)

		switch opts.Events {
		case EventsRedis:
			rc, invokeErr := do.Invoke[*Redis](i)
			if invokeErr != nil {
				return nil, invokeErr
			}

			publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
				Client:     rc.Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			}, messaging.NewZapLogger(logger))
		case EventsMemory:
			publisher, err = do.Invoke[*gochannel.GoChannel](i)
		default:
			return nil, fmt.Errorf("no publisher for events transport %q", opts.Events)
		}

		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (handlers.Events, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.Events == EventsNone {
			return handlers.DiscardEvents(), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return handlers.Events{}, err
		}

		publisher := group.Publisher()

		return handlers.Events{
			Issued:   messaging.NewPublishFunc[analytics.LinkIssuedEvent](publisher, analytics.TopicLinkIssued),
			Resolved: messaging.NewPublishFunc[analytics.LinkResolvedEvent](publisher, analytics.TopicLinkResolved),
			Verified: messaging.NewPublishFunc[analytics.LinkVerifiedEvent](publisher, analytics.TopicLinkVerified),
		}, nil
	})
}

// ConsumerGroupPackage provides the consumers that write analytics events to the
// analytics store.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		stores := analytics.Fanout{analyticsstore.NewLog(logger.Named("analytics"))}

		if opts.AnalyticsTally {
			rc, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			stores = append(stores, analyticsstore.NewCounters(rc.Client))
		}

		return stores, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			subscriber message.Subscriber
			err        error
		)

		switch opts.Events {
		case EventsRedis:
			rc, invokeErr := do.Invoke[*Redis](i)
			if invokeErr != nil {
				return nil, invokeErr
			}

			subscriber, err = redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rc.Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: opts.ConsumerGroup,
			}, messaging.NewZapLogger(logger))
		case EventsMemory:
			subscriber, err = do.Invoke[*gochannel.GoChannel](i)
		default:
			return nil, fmt.Errorf("no subscriber for events transport %q", opts.Events)
		}

		if err != nil {
			return nil, err
		}

		st := do.MustInvoke[analytics.Store](i)

		// The standalone consumer binary runs without a metrics registry.
		var consumerOpts []messaging.ConsumerOption
		if rec, recErr := do.Invoke[*metrics.Recorder](i); recErr == nil {
			consumerOpts = append(consumerOpts, messaging.WithObserver(rec.Consumed))
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[analytics.LinkIssuedEvent](
			subscriber, analytics.TopicLinkIssued, st.SaveIssued, logger, consumerOpts...))
		group.Add(messaging.NewConsumer[analytics.LinkResolvedEvent](
			subscriber, analytics.TopicLinkResolved, st.SaveResolved, logger, consumerOpts...))
		group.Add(messaging.NewConsumer[analytics.LinkVerifiedEvent](
			subscriber, analytics.TopicLinkVerified, st.SaveVerified, logger, consumerOpts...))

		return group, nil
	})
}

// EventsPackage provides the in-process transport shared by publisher and subscriber
// when events travel in memory. Register it once, before the publisher and consumer packages.
func EventsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: memoryBuffer,
		}, messaging.NewZapLogger(logger)), nil
	})
}
