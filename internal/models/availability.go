package models

import (
	"fmt"
	"time"
)

// MorningEndHour is the first hour that belongs to the afternoon partition
const MorningEndHour = 12

// AvailabilitySlot is one hour of a provider's day
type AvailabilitySlot struct {
	Hour      int  `json:"hour"`
	Available bool `json:"available"`
}

// HourSlot is a partitioned slot with its display label
type HourSlot struct {
	Hour      int    `json:"hour"`
	Available bool   `json:"available"`
	Label     string `json:"label"`
}

// HourLabel formats an hour of the day as "HH:00"
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// Selection identifies the (provider, calendar date) a day's availability belongs to
type Selection struct {
	ProviderID string
	Year       int
	Month      int
	Day        int
}

// NewSelection takes the calendar date of date in its own location
func NewSelection(providerID string, date time.Time) Selection {
	return Selection{
		ProviderID: providerID,
		Year:       date.Year(),
		Month:      int(date.Month()),
		Day:        date.Day(),
	}
}

// IsZero reports whether no selection has been made
func (s Selection) IsZero() bool {
	return s == Selection{}
}

// String renders the selection for logs
func (s Selection) String() string {
	return fmt.Sprintf("%s@%04d-%02d-%02d", s.ProviderID, s.Year, s.Month, s.Day)
}

// DayAvailability is the exposed availability for the current selection
type DayAvailability struct {
	Selection Selection
	Morning   []HourSlot
	Afternoon []HourSlot
	// Loaded is true once a fetch for Selection has completed, successfully or not
	Loaded bool
	// Err is the failure of the last fetch for Selection; availability is then empty
	Err error
}

// Find returns the slot for hour in either partition
func (d DayAvailability) Find(hour int) (HourSlot, bool) {
	for _, part := range [][]HourSlot{d.Morning, d.Afternoon} {
		for _, slot := range part {
			if slot.Hour == hour {
				return slot, true
			}
		}
	}
	return HourSlot{}, false
}
