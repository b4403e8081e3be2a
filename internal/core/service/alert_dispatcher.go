package service

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
)

// Appearance is the visual rendering hint for a notification type.
type Appearance struct {
	Icon  string
	Color string
	Label string
}

// appearanceByType is the closed rendering table. Unknown or future types
// fall back to the generic system appearance rather than failing.
var appearanceByType = map[domain.NotificationType]Appearance{
	domain.TypeUrgentAlert:   {Icon: "siren", Color: "red", Label: "Urgent alert"},
	domain.TypeStockWarning:  {Icon: "box-open", Color: "amber", Label: "Stock warning"},
	domain.TypeExpiryWarning: {Icon: "calendar-x", Color: "amber", Label: "Expiry warning"},
	domain.TypeAnnouncement:  {Icon: "megaphone", Color: "blue", Label: "Announcement"},
	domain.TypeSystem:        {Icon: "gear", Color: "gray", Label: "System"},
}

var defaultAppearance = appearanceByType[domain.TypeSystem]

// AppearanceFor resolves the rendering hint for a notification type.
func AppearanceFor(t domain.NotificationType) Appearance {
	if a, ok := appearanceByType[t]; ok {
		return a
	}
	return defaultAppearance
}

// AlertDispatcher turns sync engine events into user-facing cues: one cue per
// event, urgent for a priority escalation, subtle otherwise, never both for
// the same tick.
type AlertDispatcher struct {
	player ports.CuePlayer
	log    zerolog.Logger
	muted  atomic.Bool
}

func NewAlertDispatcher(player ports.CuePlayer, log zerolog.Logger) *AlertDispatcher {
	return &AlertDispatcher{player: player, log: log}
}

// SetMuted toggles the mute flag. The flag is consulted at play time, not at
// schedule time, so toggling mid-flight takes effect for the next cue.
func (d *AlertDispatcher) SetMuted(muted bool) {
	d.muted.Store(muted)
}

// Muted reports the current mute flag.
func (d *AlertDispatcher) Muted() bool {
	return d.muted.Load()
}

// Handle plays exactly one cue for an event, unless muted.
func (d *AlertDispatcher) Handle(event Event) {
	if d.muted.Load() {
		d.log.Debug().Int("count", event.Snapshot.Count).Msg("alert suppressed, muted")
		return
	}
	switch event.Kind {
	case EventPriorityEscalated:
		d.player.PlayUrgent()
	default:
		d.player.PlaySubtle()
	}
}

// Run subscribes to the engine and dispatches events until ctx is cancelled
// or the engine closes the subscription.
func (d *AlertDispatcher) Run(ctx context.Context, engine *SyncEngine) {
	events, cancel := engine.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			d.Handle(event)
		}
	}
}
