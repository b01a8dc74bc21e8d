package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Period duration bounds, in minutes.
const (
	MinPeriodDuration     = 30
	MaxPeriodDuration     = 60
	PeriodDurationStep    = 5
	DefaultPeriodDuration = 45
)

// ErrInvalidPeriodDuration is returned for durations outside 30..60 or off the 5 minute step.
var ErrInvalidPeriodDuration = errors.New("period duration must be between 30 and 60 minutes in steps of 5")

// DisplayOrder maps grid column positions to schedule indexes. Columns start on Friday.
var DisplayOrder = [7]int{5, 6, 0, 1, 2, 3, 4}

// ScheduleDay is one weekday of the school's operating hours.
type ScheduleDay struct {
	Open  bool   `json:"open"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Window resolves the day's hours.
func (d ScheduleDay) Window() (Clock, Clock, error) {
	return ParseWindow(d.Start, d.End)
}

// WeeklySchedule holds the seven days indexed Sunday(0) to Saturday(6).
type WeeklySchedule [7]ScheduleDay

// DayName returns the English weekday name for a schedule index.
func DayName(i int) string {
	return time.Weekday(i).String()
}

// DefaultWeeklySchedule is the all-closed week used when nothing valid is stored.
func DefaultWeeklySchedule() WeeklySchedule {
	var ws WeeklySchedule
	for i := range ws {
		ws[i] = ScheduleDay{Open: false, Start: "09:00", End: "17:00"}
	}
	return ws
}

// ActiveDays lists the names of open days in Sunday to Saturday order.
func (ws WeeklySchedule) ActiveDays() []string {
	days := make([]string, 0, len(ws))
	for i, d := range ws {
		if d.Open {
			days = append(days, DayName(i))
		}
	}
	return days
}

// DisplayDay is a grid column.
type DisplayDay struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Open  bool   `json:"open"`
}

// DisplayDays returns all seven days in DisplayOrder.
func (ws WeeklySchedule) DisplayDays() []DisplayDay {
	days := make([]DisplayDay, 0, len(DisplayOrder))
	for _, idx := range DisplayOrder {
		days = append(days, DisplayDay{Index: idx, Name: DayName(idx), Open: ws[idx].Open})
	}
	return days
}

// RowWindow returns the window of the first open day, scanning Sunday to Saturday.
// All grid columns share the rows generated from it.
func (ws WeeklySchedule) RowWindow() (Clock, Clock, bool) {
	for _, d := range ws {
		if !d.Open {
			continue
		}
		start, end, err := d.Window()
		if err != nil {
			continue
		}
		return start, end, true
	}
	return 0, 0, false
}

// RowSlots generates the grid rows for the given period duration.
func (ws WeeklySchedule) RowSlots(durationMinutes int) []Slot {
	start, end, ok := ws.RowWindow()
	if !ok {
		return []Slot{}
	}
	return GenerateSlots(start, end, durationMinutes)
}

// Validate checks a schedule before it is saved.
func (ws WeeklySchedule) Validate() error {
	for i, d := range ws {
		if (d.Start == FullDay) != (d.End == FullDay) {
			return fmt.Errorf("%s: %w", DayName(i), ErrSentinelMismatch)
		}
		if !d.Open {
			continue
		}
		start, end, err := d.Window()
		if err != nil {
			return fmt.Errorf("%s: %w", DayName(i), err)
		}
		if start >= end {
			return fmt.Errorf("%s: opening time %s must be before closing time %s", DayName(i), d.Start, d.End)
		}
	}
	return nil
}

// ValidatePeriodDuration checks a subject period length.
func ValidatePeriodDuration(minutes int) error {
	if minutes < MinPeriodDuration || minutes > MaxPeriodDuration || minutes%PeriodDurationStep != 0 {
		return ErrInvalidPeriodDuration
	}
	return nil
}

type storedDay struct {
	Open  *bool   `json:"open"`
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// DecodeWeeklySchedule reads a persisted schedule. The value may be a JSON array or a
// JSON string holding one. Anything malformed yields DefaultWeeklySchedule and false.
func DecodeWeeklySchedule(raw []byte) (WeeklySchedule, bool) {
	data := bytes.TrimSpace(raw)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return DefaultWeeklySchedule(), false
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	var stored []storedDay
	if err := json.Unmarshal(data, &stored); err != nil || len(stored) != len(WeeklySchedule{}) {
		return DefaultWeeklySchedule(), false
	}

	var ws WeeklySchedule
	for i, d := range stored {
		if d.Open == nil || d.Start == nil || d.End == nil {
			return DefaultWeeklySchedule(), false
		}
		day := ScheduleDay{Open: *d.Open, Start: *d.Start, End: *d.End}
		if (day.Start == FullDay) != (day.End == FullDay) {
			return DefaultWeeklySchedule(), false
		}
		if day.Open {
			if _, _, err := day.Window(); err != nil {
				return DefaultWeeklySchedule(), false
			}
		}
		ws[i] = day
	}
	return ws, true
}
