package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/wardkeep/wardkeep/iso8601"
	"github.com/wardkeep/wardkeep/logging"
	"github.com/wardkeep/wardkeep/validate"
)

// Trail is the single write path into the audit store. It assigns record
// IDs and timestamps, sanitizes details, persists the record, and mirrors
// it to the structured log.
//
// Log mirroring is fail-open: a sink failure never fails the recorded
// action. Store failures do fail it, since an action without a durable
// record did not happen as far as the trail is concerned.
type Trail struct {
	store  Store
	logger logging.Logger
	now    func() time.Time
}

// NewTrail creates a Trail over the given store, mirroring records to the
// given logger. A nil logger disables mirroring.
func NewTrail(store Store, logger logging.Logger) *Trail {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Trail{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Append records one action. The username is kept as given; the detail is
// sanitized before storage so log injection through user-controlled text
// is not possible. Returns the stored record.
func (t *Trail) Append(ctx context.Context, username string, kind Kind, detail string, success bool) (*Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid audit kind %q", kind)
	}

	rec := &Record{
		ID:        NewRecordID(),
		Username:  username,
		Timestamp: t.now().UTC(),
		Kind:      kind,
		Detail:    validate.SanitizeLogValue(detail),
		Success:   success,
	}

	if err := t.store.Append(ctx, rec); err != nil {
		return nil, err
	}

	t.logger.LogAction(logging.ActionLogEntry{
		RecordID:  rec.ID,
		Username:  rec.Username,
		Timestamp: iso8601.Format(rec.Timestamp),
		Kind:      rec.Kind.String(),
		Detail:    rec.Detail,
		Success:   rec.Success,
	})
	return rec, nil
}

// Success records a successful action.
func (t *Trail) Success(ctx context.Context, username string, kind Kind, detail string) (*Record, error) {
	return t.Append(ctx, username, kind, detail, true)
}

// Failure records a failed action.
func (t *Trail) Failure(ctx context.Context, username string, kind Kind, detail string) (*Record, error) {
	return t.Append(ctx, username, kind, detail, false)
}

// List returns records ordered newest first.
func (t *Trail) List(ctx context.Context, limit int) ([]*Record, error) {
	return t.store.List(ctx, limit)
}

// ListByUser returns records attributed to a username, newest first.
func (t *Trail) ListByUser(ctx context.Context, username string, limit int) ([]*Record, error) {
	return t.store.ListByUser(ctx, username, limit)
}

// ListByKind returns records of a specific kind, newest first.
func (t *Trail) ListByKind(ctx context.Context, kind Kind, limit int) ([]*Record, error) {
	return t.store.ListByKind(ctx, kind, limit)
}
