package model

import (
	"fmt"
	"strings"
)

// BaseISOCode is the reference currency every rate is expressed against.
const BaseISOCode = "EUR"

// Currency is the persisted part of a currency record.
// Session state (entered value, active flag) lives in currencylist.Row.
type Currency struct {
	ISOCode         string  `json:"iso_code"`
	RateBasedOnEuro float64 `json:"rate_based_on_euro"`
}

// FullName looks the code up in the static name table; unknown codes give "".
func (c Currency) FullName() string {
	return fullNames[strings.ToUpper(c.ISOCode)]
}

// FlagImageURL points at the small round flag used next to each row.
func (c Currency) FlagImageURL() string {
	return fmt.Sprintf("https://fxtop.com/ico/%s.gif", strings.ToLower(c.ISOCode))
}

var fullNames = map[string]string{
	BaseISOCode: "Euro",
	"AUD":       "Australian dollar",
	"BGN":       "Bulgarian lev",
	"BRL":       "Brazilian real",
	"CAD":       "Canadian dollar",
	"CHF":       "Swiss franc",
	"CNY":       "Chinese yuan",
	"CZK":       "Czech koruna",
	"DKK":       "Danish krone",
	"GBP":       "British pound",
	"HKD":       "Hong Kong dollar",
	"HRK":       "Croatian kuna",
	"HUF":       "Hungarian forint",
	"IDR":       "Indonesian rupiah",
	"ILS":       "Israeli new shekel",
	"INR":       "Indian rupee",
	"ISK":       "Icelandic króna",
	"JPY":       "Japanese yen",
	"KRW":       "South Korean won",
	"MXN":       "Mexican peso",
	"MYR":       "Malaysian ringgit",
	"NOK":       "Norwegian krone",
	"NZD":       "New Zealand dollar",
	"PHP":       "Philippine peso",
	"PLN":       "Polish złoty",
	"RON":       "Romanian leu",
	"RUB":       "Russian ruble",
	"SEK":       "Swedish krona",
	"SGD":       "Singapore dollar",
	"THB":       "Thai baht",
	"TRY":       "Turkish lira",
	"USD":       "United States dollar",
	"ZAR":       "South African rand",
}
