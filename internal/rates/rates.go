package rates

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is how many decimals a displayed value carries.
const DisplayPlaces = 2

// Displayed converts the active row's entered value into the target currency,
// keeping the cross-rate implied by both base-currency rates.
// An unknown or zero active rate yields 0.
func Displayed(entered, activeRate, targetRate float64) float64 {
	if !valid(activeRate) || math.IsNaN(targetRate) || math.IsInf(targetRate, 0) {
		return 0
	}
	if math.IsNaN(entered) || math.IsInf(entered, 0) {
		return 0
	}
	return entered * (targetRate / activeRate)
}

// Format renders v with DisplayPlaces decimals.
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(DisplayPlaces)
}

// ParseAmount reads what the user typed. It never fails: anything that is not
// a finite, non-negative number reads as 0. A lone comma is taken as the
// decimal separator.
func ParseAmount(text string) float64 {
	s := strings.TrimSpace(text)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ValidRate reports whether r can serve as a base-currency rate.
func ValidRate(r float64) bool { return valid(r) }

func valid(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
