package session

import "time"

// DeviceClass is the coarse device category reported at login.
type DeviceClass string

const (
	// DeviceMobile is a phone-class device.
	DeviceMobile DeviceClass = "mobile"
	// DeviceTablet is a tablet-class device.
	DeviceTablet DeviceClass = "tablet"
	// DeviceDesktop is a desktop or laptop browser.
	DeviceDesktop DeviceClass = "desktop"
)

// Coordinates is a resolved latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Location is the geolocation resolved for a session's IP address.
// Resolution happens outside the engine; Coords is nil when the resolver
// could not produce a coordinate pair.
type Location struct {
	Country string
	City    string
	Coords  *Coordinates
}

// Session is one tracked device session for an identity.
//
// A session is considered active iff Active is true and LastActivity falls
// within the store's activity window. Sessions are owned exclusively by the
// identity that created them and are mutated only through [Store].
type Session struct {
	SessionID    string
	Identity     string
	DeviceID     string
	DeviceClass  DeviceClass
	Browser      string
	IPAddress    string
	Location     Location
	CreatedAt    time.Time
	LastActivity time.Time
	Active       bool
}

// Stats is a point-in-time summary of an identity's session history.
type Stats struct {
	TotalSessions  int
	ActiveSessions int
	DeviceClasses  []string
	Cities         []string
}

func (s *Session) clone() Session {
	out := *s
	if s.Location.Coords != nil {
		coords := *s.Location.Coords
		out.Location.Coords = &coords
	}
	return out
}
