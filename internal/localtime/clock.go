package localtime

import (
	"fmt"
	"time"

	// Embeds the zone database so Asia/Tehran resolves in minimal containers.
	_ "time/tzdata"
)

const DefaultZone = "Asia/Tehran"

// Clock reports the wall-clock month and hour in a fixed zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", zone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Month returns the full English month name, e.g. "November".
func (c *Clock) Month() string {
	return c.Now().Format("January")
}

// Hour returns the zero-padded 12-hour clock hour, e.g. "02 PM".
func (c *Clock) Hour() string {
	return c.Now().Format("03 PM")
}
