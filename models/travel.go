package models

// ResultCategory tags a classified travel-API result set.
type ResultCategory string

const (
	CategoryFlights    ResultCategory = "flights"
	CategoryHotels     ResultCategory = "hotels"
	CategoryActivities ResultCategory = "activities"
	CategoryTransfers  ResultCategory = "transfers"
	CategoryGeneric    ResultCategory = "generic"
)

// ClassifiedResults is a tagged result set extracted from a travel-API
// response or an assistant-embedded JSON block. A new set of a given
// category replaces the previous one for the session.
type ClassifiedResults struct {
	Category ResultCategory `json:"category"`
	// Tag carries the raw type of generic passthrough payloads (the
	// first element's "type" field, or "generic").
	Tag   string           `json:"tag,omitempty"`
	Items []map[string]any `json:"items"`
}

// MonetaryAmount is a single priced component of a transfer quotation.
type MonetaryAmount struct {
	MonetaryAmount string `json:"monetaryAmount"`
}

// TransferQuotation is the pricing block of a transfer offer. The
// provider's total is known to disagree with its own components, so the
// classifier recomputes it from base + taxes - discount + fees.
type TransferQuotation struct {
	MonetaryAmount string           `json:"monetaryAmount"`
	CurrencyCode   string           `json:"currencyCode"`
	Base           *MonetaryAmount  `json:"base,omitempty"`
	Discount       *MonetaryAmount  `json:"discount,omitempty"`
	TotalTaxes     *MonetaryAmount  `json:"totalTaxes,omitempty"`
	Fees           []MonetaryAmount `json:"fees,omitempty"`
}
