package calc

import (
	"fmt"
	"math"
	"time"

	"classroom-server-go/models"
)

// FormatPercentage renders a percentage rounded to a whole number, "0%" for nil
func FormatPercentage(value *float64) string {
	if value == nil {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(*value)))
}

// FormatDate renders a day the way it is shown in lists, e.g. "May 1, 2024"
func FormatDate(d models.Date) string {
	return d.Time().Format("January 2, 2006")
}

// FormatDateForInput renders a day for date input fields
func FormatDateForInput(d models.Date) string {
	return d.String()
}

// Today returns the current calendar day in UTC
func Today(now time.Time) models.Date {
	return models.DateOf(now.UTC())
}
