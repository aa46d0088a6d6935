package usersink

import (
	"context"

	"github.com/goliatone/go-pagetree/pkg/activity"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

// Hook adapts activity events onto a go-users activity sink so change
// notifications land in the shared activity stream.
type Hook struct {
	Sink interfaces.ActivitySink
}

// Notify implements activity.Notifier by mapping the event onto an
// ActivityRecord. Events without a verb are skipped silently.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || event.Verb == "" {
		return nil
	}

	record := interfaces.ActivityRecord{
		Verb:       event.Verb,
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}

	if len(event.Metadata) > 0 {
		record.Data = make(map[string]any, len(event.Metadata))
		for key, value := range event.Metadata {
			record.Data[key] = value
		}
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
