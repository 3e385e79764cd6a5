package dashboard

import (
	"context"
	"log/slog"
	"time"
)

// MetricsSnapshot is the payload behind metrics_request and the periodic
// metrics broadcast.
type MetricsSnapshot struct {
	ActiveUsers    int    `json:"active_users"`
	ActiveSessions int    `json:"active_sessions"`
	SystemHealth   string `json:"system_health"`
}

// MetricsSource supplies the current platform snapshot. When the source is
// unavailable the hub serves a zero snapshot with "good" health instead of
// failing the request.
type MetricsSource interface {
	Snapshot(ctx context.Context) (MetricsSnapshot, error)
}

// UserCounter is the slice of the realtime hub the metrics source needs.
type UserCounter interface {
	ActiveUsers() int
}

// HubMetrics derives a snapshot from the live hubs: realtime identities as
// active users, dashboard connections as active sessions.
type HubMetrics struct {
	Users    UserCounter
	Sessions *Hub
}

func (m HubMetrics) Snapshot(context.Context) (MetricsSnapshot, error) {
	snap := MetricsSnapshot{SystemHealth: "good"}
	if m.Users != nil {
		snap.ActiveUsers = m.Users.ActiveUsers()
	}
	if m.Sessions != nil {
		snap.ActiveSessions = m.Sessions.Sessions()
	}
	return snap, nil
}

// RunMetricsBroadcaster pushes a fresh snapshot to the metrics pool on every
// tick until the context is canceled.
func RunMetricsBroadcaster(ctx context.Context, hub *Hub, src MetricsSource, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := src.Snapshot(ctx)
			if err != nil {
				log.Warn("metrics snapshot failed", "err", err)
				snap = MetricsSnapshot{SystemHealth: "good"}
			}
			hub.BroadcastMetrics(snap)
		}
	}
}
