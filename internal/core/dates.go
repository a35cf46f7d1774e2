package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthRange resolves a "<MonthName> <Year>" label to the half-open epoch
// second range [firstOfMonth, firstOfNextMonth) in UTC.
//
//	MonthRange("March 2024") -> 2024-03-01T00:00:00Z, 2024-04-01T00:00:00Z
//
// An unparseable month name or year fails with ErrUnknownMonth rather than
// silently matching nothing.
func MonthRange(monthYear string) (start, end int64, err error) {
	fields := strings.Fields(monthYear)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMonth, monthYear)
	}
	month, ok := monthByName(fields[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMonth, fields[0])
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMonth, monthYear)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.Unix(), first.AddDate(0, 1, 0).Unix(), nil
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

// ISODate formats an epoch-second timestamp as the YYYY-MM-DD date used by
// the exchange rate endpoints, in UTC.
func ISODate(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02")
}
