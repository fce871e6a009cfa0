package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/observability"
)

const (
	collectionPrincipals = "principals"
	collectionLessons    = "lessons"
	collectionNews       = "news"
	collectionUploads    = "uploads"
	collectionQuestions  = "questions"

	resultApplied  = "applied"
	resultNoop     = "noop"
	resultDenied   = "denied"
	resultRejected = "rejected"
)

// EventPublisher fans change events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event dto.Event)
}

// changeNotifier is shared by the store services. It counts every mutation
// attempt, and for applied ones writes the audit entry and notifies
// subscribers. Audit failures are logged only.
type changeNotifier struct {
	events   EventPublisher
	activity ActivityRecorder
	logger   zerolog.Logger
}

func newChangeNotifier(events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) changeNotifier {
	return changeNotifier{events: events, activity: activity, logger: logger}
}

func (n changeNotifier) outcome(collection, action, result string) {
	observability.StoreMutations().WithLabelValues(collection, action, result).Inc()
}

func (n changeNotifier) applied(ctx context.Context, actor models.Principal, collection, action, entityID string, data interface{}, metadata map[string]interface{}) {
	n.appliedFor(ctx, actor, "", collection, action, entityID, data, metadata)
}

// appliedFor is applied with the event restricted to one principal.
func (n changeNotifier) appliedFor(ctx context.Context, actor models.Principal, audience, collection, action, entityID string, data interface{}, metadata map[string]interface{}) {
	n.outcome(collection, action, resultApplied)

	if n.activity != nil {
		role := string(actor.Role)
		if actor.ID == "" {
			role = "public"
		}
		_, err := n.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  role,
			Action:     collection + "." + action,
			EntityType: collection,
			EntityID:   entityID,
			Metadata:   metadata,
		})
		if err != nil {
			n.logger.Warn().Err(err).Str("collection", collection).Str("action", action).Msg("failed to record activity")
		}
	}

	n.publish(ctx, dto.Event{
		Collection: collection,
		Action:     action,
		EntityID:   entityID,
		Audience:   audience,
		Data:       data,
	})
}

func (n changeNotifier) publish(ctx context.Context, event dto.Event) {
	if n.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	n.events.Publish(ctx, event)
}
