package domain

import (
	"fmt"
	"strings"
)

const unknownCountry = "Unknown"

// FailureNoun picks the singular only for exactly one failure.
func FailureNoun(n int) string {
	if n == 1 {
		return "failure"
	}
	return "failures"
}

// FlagIndicator renders a Slack flag emoji shortcode for a two-letter country code.
func FlagIndicator(countryCode string) string {
	return fmt.Sprintf(":flag-%s:", strings.ToLower(countryCode))
}

// BanMessage formats a ban notice. The flag is shown whenever the lookup returned a
// country code, the country name only when the code was recognised.
func BanMessage(ip, jail string, failures int, enrichment Enrichment) string {
	tail := fmt.Sprintf("in jail %s for %d %s", jail, failures, FailureNoun(failures))

	if enrichment.Outcome != Enriched || enrichment.CountryCode == "" {
		return fmt.Sprintf("Banned %s (%s) %s", ip, unknownCountry, tail)
	}

	country := enrichment.CountryName
	if country == "" {
		country = unknownCountry
	}
	return fmt.Sprintf("Banned %s %s (%s) %s", FlagIndicator(enrichment.CountryCode), ip, country, tail)
}

// Message renders the text for any action. For ban it uses the given enrichment,
// the other actions ignore it.
func Message(req ActionRequest, enrichment Enrichment) string {
	switch req.Action {
	case ActionBan:
		return BanMessage(req.IP, req.Jail, req.Failures, enrichment)
	case ActionUnban:
		return fmt.Sprintf("Removed %s from jail %s", req.IP, req.Jail)
	case ActionStart:
		return fmt.Sprintf("Jail '%s' has been started", req.Jail)
	case ActionStop:
		return fmt.Sprintf("Jail '%s' has been stopped", req.Jail)
	default:
		panic(fmt.Sprintf("domain: Message called with unvalidated action %q", req.Action))
	}
}

// NeedsEnrichment reports whether the action's message uses geolocation data.
func (a ActionType) NeedsEnrichment() bool {
	return a == ActionBan
}
