package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record; page change notifications
// are mapped onto it so they land in the host's shared activity stream.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives page activity records. The go-users activity service
// satisfies this, as does any host-provided recorder.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, record ActivityRecord) error

// Log implements ActivitySink.
func (f ActivitySinkFunc) Log(ctx context.Context, record ActivityRecord) error {
	return f(ctx, record)
}
