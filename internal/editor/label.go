package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidDate is returned for join dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) unixDay() int64 {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysBetween counts whole calendar days from join to the date of now.
// It is negative when join lies in the future.
func DaysBetween(now time.Time, join Date) int {
	return int(DateOf(now).unixDay() - join.unixDay())
}

// HoursSince is the label value: whole days since join times 24, never
// negative.
func HoursSince(now time.Time, join Date) int {
	return max(0, DaysBetween(now, join)) * 24
}

// The number is passed preformatted so it is never digit-grouped; only the
// unit is localized.
const hoursKey = "%s hours"

func init() {
	_ = message.SetString(language.Vietnamese, hoursKey, "%s giờ")
	_ = message.SetString(language.English, hoursKey, "%s hours")
}

var labelLocales = language.NewMatcher([]language.Tag{language.Vietnamese, language.English})

// HoursLabeler formats the hours value with a localized unit.
type HoursLabeler struct {
	printer *message.Printer
}

// NewHoursLabeler picks the closest supported locale; unknown or invalid
// locales fall back to Vietnamese.
func NewHoursLabeler(locale string) *HoursLabeler {
	tag := language.Vietnamese
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, conf := labelLocales.Match(parsed)
		if conf != language.No {
			tag = []language.Tag{language.Vietnamese, language.English}[idx]
		}
	}
	return &HoursLabeler{printer: message.NewPrinter(tag)}
}

// Label renders the hours label for join, or "" when no date is set.
func (l *HoursLabeler) Label(now time.Time, join *Date) string {
	if join == nil {
		return ""
	}
	return l.printer.Sprintf(hoursKey, strconv.Itoa(HoursSince(now, *join)))
}
