package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical layouts used across the ingestion pipeline
const (
	DATE_LAYOUT = "2006-01-02"
	TIME_LAYOUT = "15:04:05"
)

var (
	siteDateRe   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,})\.?\s+(\d{4})$`)
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	clock12Re    = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)$`)
	hourMinDurRe = regexp.MustCompile(`(?i)^(\d+)\s*h(?:\s*(\d{1,2})\s*m?)?(?:\s*\d+\s*s)?$`)
	minOnlyDurRe = regexp.MustCompile(`(?i)^(\d+)\s*m$`)
	colonDurRe   = regexp.MustCompile(`^(\d+):(\d{2})$`)
)

var monthNumbers = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// NormalizeDate converts site date text like "11 Dec 2025" into the
// canonical "2025-12-11" form. Returns false when the text is not a
// recognizable date; callers treat that as missing data.
func NormalizeDate(text string) (string, bool) {
	match := siteDateRe.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", false
	}

	day, err := strconv.Atoi(match[1])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}

	monthKey := strings.ToUpper(match[2])
	if len(monthKey) > 3 {
		monthKey = monthKey[:3]
	}
	month, ok := monthNumbers[monthKey]
	if !ok {
		return "", false
	}

	year, err := strconv.Atoi(match[3])
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// NormalizeTime converts 24-hour ("14:30", "14:30:05") and 12-hour
// ("2:30 PM") time text into the canonical "HH:MM:SS" form, defaulting
// seconds to 00. 12 AM maps to hour 0 and 12 PM stays hour 12.
func NormalizeTime(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	if match := clock12Re.FindStringSubmatch(trimmed); match != nil {
		hour, _ := strconv.Atoi(match[1])
		minute, _ := strconv.Atoi(match[2])
		second := 0
		if match[3] != "" {
			second, _ = strconv.Atoi(match[3])
		}
		if hour < 1 || hour > 12 || minute > 59 || second > 59 {
			return "", false
		}

		meridiem := strings.ToUpper(match[4])
		if meridiem == "AM" && hour == 12 {
			hour = 0
		} else if meridiem == "PM" && hour != 12 {
			hour += 12
		}

		return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), true
	}

	if match := clockRe.FindStringSubmatch(trimmed); match != nil {
		hour, _ := strconv.Atoi(match[1])
		minute, _ := strconv.Atoi(match[2])
		second := 0
		if match[3] != "" {
			second, _ = strconv.Atoi(match[3])
		}
		if hour > 23 || minute > 59 || second > 59 {
			return "", false
		}

		return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), true
	}

	return "", false
}

// NormalizeDuration converts duration text into integer minutes.
// Accepted forms: "5h 30m", "5h30m", "5h50" (bare minute tail, 0-59),
// "2h", "45m", "1:50" (H:MM). A seconds component in "Xh Ym Zs" text is
// discarded, never rounded into the minutes. Unparseable text yields 0
// because duration is best-effort metadata.
func NormalizeDuration(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	if match := hourMinDurRe.FindStringSubmatch(trimmed); match != nil {
		hours, _ := strconv.Atoi(match[1])
		minutes := 0
		if match[2] != "" {
			minutes, _ = strconv.Atoi(match[2])
			if minutes > 59 {
				return 0
			}
		}
		return hours*60 + minutes
	}

	if match := minOnlyDurRe.FindStringSubmatch(trimmed); match != nil {
		minutes, _ := strconv.Atoi(match[1])
		return minutes
	}

	if match := colonDurRe.FindStringSubmatch(trimmed); match != nil {
		hours, _ := strconv.Atoi(match[1])
		minutes, _ := strconv.Atoi(match[2])
		if minutes > 59 {
			return 0
		}
		return hours*60 + minutes
	}

	return 0
}

// NextDate returns the canonical date one day after the given canonical
// date, used when an arrival time rolls past midnight.
func NextDate(date string) string {
	parsed, err := parseCanonicalDate(date)
	if err != nil {
		return date
	}
	return parsed.AddDate(0, 0, 1).Format(DATE_LAYOUT)
}

func parseCanonicalDate(date string) (time.Time, error) {
	return time.Parse(DATE_LAYOUT, date)
}

// ExpandDateRange lists every canonical date from start to end
// inclusive. The start must not be after the end.
func ExpandDateRange(start, end string) ([]string, error) {
	from, err := parseCanonicalDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := parseCanonicalDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s before start date %s", end, start)
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DATE_LAYOUT))
	}
	return dates, nil
}
