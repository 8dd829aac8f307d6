package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// DeriveTimeWindow turns a filter token into an inclusive local-time window.
// Two forms are accepted:
//
//	"YYYY-MM"              first instant of the month through the last day
//	                       at 23:59:59.999; the month may be zero-padded or
//	                       not ("2025-07" and "2025-7" are equivalent)
//	"YYYY-MM-DD|YYYY-MM-DD" start-of-day of the first date through
//	                        end-of-day of the second
func DeriveTimeWindow(token string) (start, end time.Time, err error) {
	if strings.Contains(token, "|") {
		return deriveRangeWindow(token)
	}
	return deriveMonthWindow(token)
}

func deriveMonthWindow(token string) (time.Time, time.Time, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, errors.Errorf("[DeriveTimeWindow] malformed month token %q", token)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "[DeriveTimeWindow] year in %q", token)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "[DeriveTimeWindow] month in %q", token)
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, errors.Errorf("[DeriveTimeWindow] month out of range in %q", token)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end, nil
}

func deriveRangeWindow(token string) (time.Time, time.Time, error) {
	parts := strings.SplitN(token, "|", 2)
	startDay, err := time.ParseInLocation(dateLayout, parts[0], time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "[DeriveTimeWindow] start date in %q", token)
	}
	endDay, err := time.ParseInLocation(dateLayout, parts[1], time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "[DeriveTimeWindow] end date in %q", token)
	}
	end := endDay.AddDate(0, 0, 1).Add(-time.Millisecond)
	return startDay, end, nil
}
