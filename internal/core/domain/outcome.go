package domain

// EnrichmentOutcome tells whether geolocation data made it into the message.
type EnrichmentOutcome string

const (
	Enriched   EnrichmentOutcome = "enriched"
	Unenriched EnrichmentOutcome = "unenriched"
)

// Enrichment is the result of looking up where a banned IP comes from.
type Enrichment struct {
	Outcome     EnrichmentOutcome
	CountryCode string // lowercased ISO 3166-1 code as returned by the lookup service
	CountryName string // empty when the code is not in the country dataset
	Err         error  // set when the lookup failed loudly (transport, decode)
}

// Unenrich returns an Unenriched result carrying err (which may be nil).
func Unenrich(err error) Enrichment {
	return Enrichment{Outcome: Unenriched, Err: err}
}

// DeliveryOutcome tells whether the chat webhook accepted the message.
type DeliveryOutcome string

const (
	Sent    DeliveryOutcome = "sent"
	Failed  DeliveryOutcome = "failed"
	Skipped DeliveryOutcome = "skipped"
)

// Delivery is the result of posting a message to the chat webhook.
type Delivery struct {
	Outcome    DeliveryOutcome
	StatusCode int // 0 when no response was received
	Err        error
}
