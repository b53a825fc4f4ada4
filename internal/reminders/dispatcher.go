package reminders

import (
	"context"
	"log/slog"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/logging"
)

// leadTime shifts every fire time five minutes ahead of the truncated
// hour so mail lands before the hour boundary the session rounds to.
const leadTime = 5 * time.Minute

// Dispatcher scans pending reminders each hour and fires the elapsed
// ones. A fired reminder is deleted after a successful send, so it fires
// at most once; a failed send leaves it for the next scan.
type Dispatcher struct {
	store  *catalog.Store
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logging.NewComponentLogger(logger, "reminders")
		}
	}
}

// New builds a Dispatcher.
func New(store *catalog.Store, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		sender: sender,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithStore returns a copy bound to another store.
func (d *Dispatcher) WithStore(store *catalog.Store) *Dispatcher {
	clone := *d
	clone.store = store
	return &clone
}

// FireAt computes when a reminder becomes due: the session air time
// truncated to its hour, minus the lead time, minus the user's
// anticipation. All in UTC.
func FireAt(airTime time.Time, anticipationMinutes int) time.Time {
	return airTime.UTC().Truncate(time.Hour).
		Add(-leadTime).
		Add(-time.Duration(anticipationMinutes) * time.Minute)
}

// Run fires every elapsed reminder and returns how many were sent.
func (d *Dispatcher) Run(ctx context.Context) (int, error) {
	due, err := d.store.RemindersDue(ctx)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	channelNames, err := d.channelNames(ctx)
	if err != nil {
		return 0, err
	}

	now := d.now().UTC()
	fired := 0
	for _, entry := range due {
		if now.Before(FireAt(entry.Session.DateTime, entry.Reminder.AnticipationMinutes)) {
			continue
		}

		show, err := d.store.ShowDataByID(ctx, entry.Session.ShowDataID)
		if err != nil {
			return fired, err
		}
		if err := d.sender.SendReminder(ctx, entry, show, channelNames[entry.Session.ChannelID], entry.User.Language); err != nil {
			d.logger.Warn("reminder send failed",
				slog.Int64("reminder_id", entry.Reminder.ID),
				slog.Int64("user_id", entry.User.ID),
				logging.Error(err))
			continue
		}
		if err := d.store.DeleteReminder(ctx, entry.Reminder.ID); err != nil {
			return fired, err
		}
		fired++
	}

	if fired > 0 {
		d.logger.Info("reminders dispatched", slog.Int("fired", fired), slog.Int("scanned", len(due)))
	}
	return fired, nil
}

func (d *Dispatcher) channelNames(ctx context.Context) (map[int64]string, error) {
	channels, err := d.store.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(channels))
	for _, channel := range channels {
		names[channel.ID] = channel.Name
	}
	return names, nil
}

// SessionRemovedNotifier adapts the Sender to the ingest sweep, which
// reports deleted sessions users still held reminders on.
type SessionRemovedNotifier struct {
	store  *catalog.Store
	sender Sender
}

// NewSessionRemovedNotifier builds the adapter.
func NewSessionRemovedNotifier(store *catalog.Store, sender Sender) *SessionRemovedNotifier {
	return &SessionRemovedNotifier{store: store, sender: sender}
}

// WithStore returns a copy bound to another store.
func (n *SessionRemovedNotifier) WithStore(store *catalog.Store) *SessionRemovedNotifier {
	return &SessionRemovedNotifier{store: store, sender: n.sender}
}

// NotifySessionRemoved mails the user that a session they watched for was
// dropped from the schedule.
func (n *SessionRemovedNotifier) NotifySessionRemoved(ctx context.Context, due catalog.ReminderDue) error {
	show, err := n.store.ShowDataByID(ctx, due.Session.ShowDataID)
	if err != nil {
		return err
	}
	channelName := ""
	channels, err := n.store.ListChannels(ctx)
	if err == nil {
		for _, channel := range channels {
			if channel.ID == due.Session.ChannelID {
				channelName = channel.Name
				break
			}
		}
	}
	return n.sender.SendSessionRemoved(ctx, due, show, channelName, due.User.Language)
}
