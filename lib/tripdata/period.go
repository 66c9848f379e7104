package tripdata

import (
	"fmt"
)

const (
	minYear = 2009
	maxYear = 9999
)

// Month is a calendar month, 1 through 12.
type Month int

func ParseMonth(month int) (Month, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid month: %d, expected a value between 1 and 12", month)
	}

	return Month(month), nil
}

// String returns the zero-padded two digit form used by every dataset file name.
func (m Month) String() string {
	return fmt.Sprintf("%02d", int(m))
}

// Months returns [month] if it's set, else every month of the year in order.
func Months(month *int) ([]Month, error) {
	if month != nil {
		parsed, err := ParseMonth(*month)
		if err != nil {
			return nil, err
		}

		return []Month{parsed}, nil
	}

	months := make([]Month, 0, 12)
	for m := 1; m <= 12; m++ {
		months = append(months, Month(m))
	}

	return months, nil
}

// ValidateYear - NYC TLC trip records start in 2009.
func ValidateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("invalid year: %d, expected a value between %d and %d", year, minYear, maxYear)
	}

	return nil
}
