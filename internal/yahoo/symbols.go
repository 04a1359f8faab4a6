package yahoo

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ternarybob/movers/internal/models"
)

// exchangeSuffix maps listing exchanges to Yahoo ticker suffixes.
// US listings carry no suffix.
var exchangeSuffix = map[models.Exchange]string{
	models.ExchangeASX:  ".AX",
	models.ExchangeHKSE: ".HK",
}

// exchangeZone is the IANA zone each exchange trades in. Yahoo stamps a
// daily bar with the session open, so the calendar date must be taken in
// this zone: ASX and HKSE sessions open on the previous UTC day.
var exchangeZone = map[models.Exchange]string{
	models.ExchangeNASDAQ: "America/New_York",
	models.ExchangeNYSE:   "America/New_York",
	models.ExchangeASX:    "Australia/Sydney",
	models.ExchangeHKSE:   "Asia/Hong_Kong",
}

var exchangeLocation = loadLocations()

func loadLocations() map[models.Exchange]*time.Location {
	locations := make(map[models.Exchange]*time.Location, len(exchangeZone))
	for exchange, zone := range exchangeZone {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			loc = time.UTC
		}
		locations[exchange] = loc
	}
	return locations
}

// Location returns the trading time zone of an exchange, UTC when unknown.
func Location(exchange models.Exchange) *time.Location {
	if loc, ok := exchangeLocation[exchange]; ok {
		return loc
	}
	return time.UTC
}

// Symbol returns the Yahoo ticker for a listed instrument.
//
//	NYSE  "BRK.B" -> "BRK-B"
//	ASX   "BHP"   -> "BHP.AX"
//	HKSE  "5"     -> "0005.HK"
func Symbol(instrument models.ListedInstrument) string {
	code := strings.ToUpper(strings.TrimSpace(instrument.Symbol))
	if code == "" {
		return ""
	}

	suffix, ok := exchangeSuffix[instrument.Exchange]
	if !ok {
		// Yahoo writes US share classes with a dash.
		return strings.ReplaceAll(code, ".", "-")
	}
	if strings.HasSuffix(code, suffix) {
		return code
	}
	if instrument.Exchange == models.ExchangeHKSE && isDigits(code) {
		code = strings.TrimLeft(code, "0")
		if len(code) < 4 {
			code = strings.Repeat("0", 4-len(code)) + code
		}
	}
	return code + suffix
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
