// Package interval classifies how a publish job was triggered and hands out
// the batch ids that group jobs of one trigger sweep.
package interval

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Interval is the trigger classification of a job.
type Interval string

const (
	Manually  Interval = "Manually"
	Triggered Interval = "Triggered"
	Realtime  Interval = "Realtime"
	Hourly    Interval = "Hourly"
	Daily     Interval = "Daily"
	Weekly    Interval = "Weekly"
	Monthly   Interval = "Monthly"
)

var all = []Interval{Manually, Triggered, Realtime, Hourly, Daily, Weekly, Monthly}

// Parse returns the interval with the given name, ignoring case.
func Parse(name string) (Interval, error) {
	for _, i := range all {
		if strings.EqualFold(string(i), name) {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown job interval %q", name)
}

// Valid reports whether i is a known interval.
func (i Interval) Valid() bool {
	_, err := Parse(string(i))
	return err == nil
}

// Scheduled reports whether jobs of this interval are started by the scheduler.
func (i Interval) Scheduled() bool {
	switch i {
	case Hourly, Daily, Weekly, Monthly:
		return true
	}
	return false
}

// BatchID returns the batch id for a sweep starting at now.
//
// Scheduled intervals map every sweep in the same period onto one id.
// Other intervals get an id unique to the call.
func (i Interval) BatchID(now time.Time) string {
	now = now.UTC()
	if !i.Scheduled() {
		return fmt.Sprintf("%s-%s-%s", i, now.Format("20060102150405"), uuid.NewString()[:8])
	}
	switch i {
	case Hourly:
		return fmt.Sprintf("%s-%s", i, now.Format("2006010215"))
	case Daily:
		return fmt.Sprintf("%s-%s", i, now.Format("20060102"))
	case Weekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s-%04dW%02d", i, year, week)
	default:
		return fmt.Sprintf("%s-%s", i, now.Format("200601"))
	}
}
