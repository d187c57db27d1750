package authtrust

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const earthRadiusKm = 6371.0

// checkMultipleDevices raises a multiple-devices event when the identity's
// active-session count, including the just-added session, exceeds the
// configured threshold.
func (e *Engine) checkMultipleDevices(ctx context.Context, sess Session) {
	active := e.sessions.Active(sess.Identity)
	if len(active) <= e.config.Anomaly.MaxActiveSessions {
		return
	}

	devices := make([]string, 0, len(active))
	cities := make(map[string]struct{})
	for _, s := range active {
		devices = append(devices, s.DeviceID)
		if s.Location.City != "" {
			cities[s.Location.City] = struct{}{}
		}
	}

	e.metrics.Inc(MetricMultipleDevices)
	e.emitEvent(ctx, sess.Identity, ActivityMultipleDevices, SeverityMedium, ActionAlert, map[string]string{
		"active_sessions": strconv.Itoa(len(active)),
		"max_allowed":     strconv.Itoa(e.config.Anomaly.MaxActiveSessions),
		"devices":         strings.Join(devices, ","),
		"distinct_cities": strconv.Itoa(len(cities)),
		"new_session_id":  sess.SessionID,
	})
}

// checkImpossibleTravel compares the new session against every session of
// the identity created within the travel window. Each pair whose implied
// speed exceeds the threshold raises its own event. Sessions without
// coordinates are skipped.
func (e *Engine) checkImpossibleTravel(ctx context.Context, sess Session) {
	if sess.Location.Coords == nil {
		return
	}

	cutoff := sess.CreatedAt.Add(-e.config.Anomaly.TravelWindow)
	for _, prior := range e.sessions.CreatedSince(sess.Identity, cutoff) {
		if prior.SessionID == sess.SessionID || prior.Location.Coords == nil {
			continue
		}
		if prior.CreatedAt.After(sess.CreatedAt) {
			continue
		}

		distance := haversineKm(*prior.Location.Coords, *sess.Location.Coords)
		elapsed := sess.CreatedAt.Sub(prior.CreatedAt)

		// Simultaneous logins from distinct places have infinite implied
		// speed and always flag.
		speed := math.Inf(1)
		if elapsed > 0 {
			speed = distance / elapsed.Hours()
		} else if distance == 0 {
			continue
		}

		if speed <= e.config.Anomaly.MaxTravelSpeedKmH {
			continue
		}

		e.metrics.Inc(MetricImpossibleTravel)
		e.emitEvent(ctx, sess.Identity, ActivityImpossibleTravel, SeverityHigh, ActionVerify, map[string]string{
			"from_city":       prior.Location.City,
			"to_city":         sess.Location.City,
			"distance_km":     fmt.Sprintf("%.1f", distance),
			"elapsed_minutes": fmt.Sprintf("%.1f", elapsed.Minutes()),
			"speed_kmh":       formatSpeed(speed),
			"from_session_id": prior.SessionID,
			"to_session_id":   sess.SessionID,
		})
	}
}

// RecordViewingActivity feeds one playback record into the unusual-hours
// check. StartedAt must carry the viewer's local time zone; a start hour
// inside the configured quiet window raises a low-severity event.
func (e *Engine) RecordViewingActivity(ctx context.Context, activity ViewingActivity) {
	if e == nil || activity.Identity == "" {
		return
	}

	hour := activity.StartedAt.Hour()
	if hour < e.config.Anomaly.UnusualHourStart || hour >= e.config.Anomaly.UnusualHourEnd {
		return
	}

	e.metrics.Inc(MetricUnusualHours)
	e.emitEvent(ctx, activity.Identity, ActivityUnusualHours, SeverityLow, ActionNone, map[string]string{
		"local_hour": strconv.Itoa(hour),
		"content_id": activity.ContentID,
		"device_id":  activity.DeviceID,
		"city":       activity.Location.City,
	})
}

// CheckRapidLogins raises a rapid-logins event when the reported attempt
// count within the window exceeds the configured threshold. The caller
// supplies the count; the engine does not track login attempts itself.
func (e *Engine) CheckRapidLogins(ctx context.Context, identity string, attempts int, window time.Duration) bool {
	if e == nil || identity == "" {
		return false
	}
	if attempts <= e.config.Anomaly.RapidLoginThreshold {
		return false
	}

	e.metrics.Inc(MetricRapidLogins)
	e.emitEvent(ctx, identity, ActivityRapidLogins, SeverityHigh, ActionLock, map[string]string{
		"attempts":  strconv.Itoa(attempts),
		"window":    window.String(),
		"threshold": strconv.Itoa(e.config.Anomaly.RapidLoginThreshold),
		"client_ip": clientIPFromContext(ctx),
	})
	return true
}

func haversineKm(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func formatSpeed(speed float64) string {
	if math.IsInf(speed, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.1f", speed)
}
