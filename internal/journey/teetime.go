package journey

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The booking history predates a consistent schema: the same tee time may
// live in the dedicated column, in selected_tee_times as JSON or as the
// text form of a Go map (`map[time:09:00 AM course:Blue]`), or buried in
// note text copied from a confirmation email. Each representation is one
// source in an ordered chain; the first usable value wins.

var (
	// clockRe matches a 12-hour time with meridiem, e.g. "9:05 AM".
	clockRe = regexp.MustCompile(`^\d{1,2}:\d{2}\s*[AaPp][Mm]$`)

	meridiemRe = regexp.MustCompile(`^[AaPp][Mm]$`)

	// noteTimeRe matches labeled times in note text: "Time: 12:20 PM",
	// "time: 10:30 am", "Tee Time: 3:45 PM".
	noteTimeRe = regexp.MustCompile(`(?i)(?:tee\s+)?time:\s*(\d{1,2}:\d{2}\s*[AaPp][Mm])`)
)

type timeSource struct {
	name    string
	extract func(Booking) (string, bool)
}

// Ordered by trust: the dedicated column beats structured payloads, which
// beat times scraped out of note text.
var timeSources = []timeSource{
	{"tee_time column", teeTimeColumn},
	{"selected_tee_times json", selectedTeeTimesJSON},
	{"selected_tee_times map literal", selectedTeeTimesMapLiteral},
	{"selected_tee_times plain", selectedTeeTimesPlain},
	{"note", noteTime},
}

// ResolveTeeTime returns the display tee time for a booking. It never
// fails: when no source yields a usable value it returns TimeTBD.
func ResolveTeeTime(b Booking) string {
	for _, src := range timeSources {
		if v, ok := src.extract(b); ok {
			return v
		}
	}
	return TimeTBD
}

func teeTimeColumn(b Booking) (string, bool) {
	t := strings.TrimSpace(b.TeeTime)
	return t, t != ""
}

// selectedTeeTimesJSON handles payloads stored as serialized JSON objects,
// e.g. {"time": "10:35 AM", "course": "Blue"}.
func selectedTeeTimesJSON(b Booking) (string, bool) {
	raw := strings.TrimSpace(b.SelectedTeeTimes)
	if raw == "" {
		return "", false
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", false
	}
	t, _ := payload["time"].(string)
	t = strings.TrimSpace(t)
	return t, t != ""
}

// selectedTeeTimesMapLiteral handles rows written by an old service that
// stored fmt-printed Go maps: map[time:10:35 AM course:Blue]. Splitting on
// spaces puts the meridiem in its own token, so it is stitched back on.
func selectedTeeTimesMapLiteral(b Booking) (string, bool) {
	raw := strings.TrimSpace(b.SelectedTeeTimes)
	open := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if open < 0 || end <= open {
		return "", false
	}
	tokens := strings.Fields(raw[open+1 : end])
	for i, tok := range tokens {
		val, ok := strings.CutPrefix(tok, "time:")
		if !ok || val == "" {
			continue
		}
		if i+1 < len(tokens) && meridiemRe.MatchString(tokens[i+1]) {
			val += " " + tokens[i+1]
		}
		if clockRe.MatchString(val) {
			return val, true
		}
	}
	return "", false
}

// selectedTeeTimesPlain handles rows where the payload is just the time
// string itself, e.g. "10:35 AM".
func selectedTeeTimesPlain(b Booking) (string, bool) {
	raw := strings.TrimSpace(b.SelectedTeeTimes)
	return raw, clockRe.MatchString(raw)
}

func noteTime(b Booking) (string, bool) {
	return ExtractTimeFromNote(b.Note)
}

// ExtractTimeFromNote pulls the first labeled tee time out of free text.
// Also used by the tee-time backfill to repair the dedicated column.
func ExtractTimeFromNote(note string) (string, bool) {
	m := noteTimeRe.FindStringSubmatch(note)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(m[1])), true
}
