// Package transform turns raw bibliographic record substructures into
// canonical claims, one file per field group. Transformers are pure with
// respect to the record: any entity mention goes through the resolver, and a
// shape with no rule is a fatal UnrecognizedShapeError rather than a guess.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openlitdb/litbridge/internal/model"
)

// Date is a normalized partial date: fixed-width value with 00 placeholders
// for the absent parts, plus the matching precision.
type Date struct {
	Value     string
	Precision model.TimePrecision
}

// Claim renders the date as a time claim.
func (d Date) Claim() model.Claim {
	return model.TimeClaim(d.Value, d.Precision)
}

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// monthNumber accepts both month names and numeric months.
func monthNumber(raw string) (string, bool) {
	if m, ok := monthNumbers[raw]; ok {
		return m, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	return fmt.Sprintf("%02d", n), true
}

// ProcessDate normalizes a date element carrying Year and optional Month and
// Day children. A date without a year is reported absent, not an error.
func ProcessDate(rec *model.Record) (Date, bool, error) {
	year := rec.Text("Year")
	if year == "" {
		return Date{}, false, nil
	}
	d := Date{Value: year + "-00-00", Precision: model.PrecisionYear}

	rawMonth := rec.Text("Month")
	if rawMonth == "" {
		return d, true, nil
	}
	month, ok := monthNumber(rawMonth)
	if !ok {
		return Date{}, false, &model.UnrecognizedShapeError{Field: "Month", Value: rawMonth}
	}
	d.Value = year + "-" + month + "-00"
	d.Precision = model.PrecisionMonth

	rawDay := rec.Text("Day")
	if rawDay == "" {
		return d, true, nil
	}
	day, err := strconv.Atoi(rawDay)
	if err != nil || day < 1 || day > 31 {
		return Date{}, false, &model.UnrecognizedShapeError{Field: "Day", Value: rawDay}
	}
	d.Value = fmt.Sprintf("%s-%s-%02d", year, month, day)
	d.Precision = model.PrecisionDay
	return d, true, nil
}

// DateRange is a parsed free-text date range reduced to the coarsest
// precision both ends share.
type DateRange struct {
	Earliest Date
	Latest   Date
	Shared   Date
}

var (
	yearOnlyRe   = regexp.MustCompile(`^(\d{4})$`)
	yearMonthRe  = regexp.MustCompile(`^(\d{4})\s+([A-Za-z]{3})$`)
	monthSpanRe  = regexp.MustCompile(`^(\d{4})\s+([A-Za-z]{3})\s*-\s*([A-Za-z]{3})$`)
	daySpanRe    = regexp.MustCompile(`^(\d{4})\s+([A-Za-z]{3})\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossYearRe  = regexp.MustCompile(`^(\d{4})\s+([A-Za-z]{3})\s*-\s*(\d{4})\s+([A-Za-z]{3})$`)
	yearSpanRe   = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{4})$`)
)

// ProcessDateRange parses a free-text medline date ("1999 Jan-Mar") into its
// endpoints and reduces them: shared year and month give MONTH precision,
// shared year alone gives YEAR, and endpoints in different years are a fatal
// AmbiguousRangeError.
func ProcessDateRange(raw string) (DateRange, error) {
	trimmed := strings.TrimSpace(raw)

	if m := yearOnlyRe.FindStringSubmatch(trimmed); m != nil {
		d := Date{Value: m[1] + "-00-00", Precision: model.PrecisionYear}
		return DateRange{Earliest: d, Latest: d, Shared: d}, nil
	}

	if m := yearMonthRe.FindStringSubmatch(trimmed); m != nil {
		month, ok := monthNumber(m[2])
		if !ok {
			return DateRange{}, &model.UnrecognizedShapeError{Field: "MedlineDate", Value: raw}
		}
		d := Date{Value: m[1] + "-" + month + "-00", Precision: model.PrecisionMonth}
		return DateRange{Earliest: d, Latest: d, Shared: d}, nil
	}

	if m := monthSpanRe.FindStringSubmatch(trimmed); m != nil {
		from, ok1 := monthNumber(m[2])
		to, ok2 := monthNumber(m[3])
		if !ok1 || !ok2 {
			return DateRange{}, &model.UnrecognizedShapeError{Field: "MedlineDate", Value: raw}
		}
		r := DateRange{
			Earliest: Date{Value: m[1] + "-" + from + "-00", Precision: model.PrecisionMonth},
			Latest:   Date{Value: m[1] + "-" + to + "-00", Precision: model.PrecisionMonth},
			Shared:   Date{Value: m[1] + "-00-00", Precision: model.PrecisionYear},
		}
		if from == to {
			r.Shared = r.Earliest
		}
		return r, nil
	}

	if m := daySpanRe.FindStringSubmatch(trimmed); m != nil {
		month, ok := monthNumber(m[2])
		if !ok {
			return DateRange{}, &model.UnrecognizedShapeError{Field: "MedlineDate", Value: raw}
		}
		from, _ := strconv.Atoi(m[3])
		to, _ := strconv.Atoi(m[4])
		return DateRange{
			Earliest: Date{Value: fmt.Sprintf("%s-%s-%02d", m[1], month, from), Precision: model.PrecisionDay},
			Latest:   Date{Value: fmt.Sprintf("%s-%s-%02d", m[1], month, to), Precision: model.PrecisionDay},
			Shared:   Date{Value: m[1] + "-" + month + "-00", Precision: model.PrecisionMonth},
		}, nil
	}

	if m := crossYearRe.FindStringSubmatch(trimmed); m != nil {
		if m[1] != m[3] {
			return DateRange{}, &model.AmbiguousRangeError{Raw: raw}
		}
		return ProcessDateRange(fmt.Sprintf("%s %s-%s", m[1], m[2], m[4]))
	}

	if m := yearSpanRe.FindStringSubmatch(trimmed); m != nil {
		if m[1] != m[2] {
			return DateRange{}, &model.AmbiguousRangeError{Raw: raw}
		}
		d := Date{Value: m[1] + "-00-00", Precision: model.PrecisionYear}
		return DateRange{Earliest: d, Latest: d, Shared: d}, nil
	}

	return DateRange{}, &model.UnrecognizedShapeError{Field: "MedlineDate", Value: raw}
}
