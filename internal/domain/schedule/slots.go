package schedule

// Slot is a half-open interval [Start, End) within one day.
type Slot struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// String renders the slot as "HH:MM-HH:MM".
func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Minutes returns the slot length.
func (s Slot) Minutes() int {
	return int(s.End - s.Start)
}

// GenerateSlots slices [start, end) into consecutive periods of durationMinutes.
// The last slot is truncated at end when the window does not divide evenly.
// An empty or inverted window, or a non-positive duration, yields no slots.
func GenerateSlots(start, end Clock, durationMinutes int) []Slot {
	if durationMinutes <= 0 || start >= end {
		return []Slot{}
	}

	slots := make([]Slot, 0, (int(end-start)+durationMinutes-1)/durationMinutes)
	for cur := start; cur < end; {
		next := min(cur+Clock(durationMinutes), end)
		slots = append(slots, Slot{Start: cur, End: next})
		cur = next
	}
	return slots
}

// GenerateSlotLabels is GenerateSlots over string inputs, returning "HH:MM-HH:MM" labels.
func GenerateSlotLabels(start, end string, durationMinutes int) ([]string, error) {
	s, e, err := ParseWindow(start, end)
	if err != nil {
		return nil, err
	}
	return Labels(GenerateSlots(s, e, durationMinutes)), nil
}

// Labels renders each slot with Slot.String.
func Labels(slots []Slot) []string {
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.String()
	}
	return labels
}
