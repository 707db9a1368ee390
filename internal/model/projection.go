package model

// DashboardSummary holds the aggregate counts shown on the dashboard.
type DashboardSummary struct {
	TotalOffers int64 `json:"total_offers"`
	Matched     int64 `json:"matched"`
	NeedsReview int64 `json:"needs_review"`
	Products    int64 `json:"products"`
}

// ReviewItem pairs an offer awaiting review with its ranked matches and the
// product behind the top one.
type ReviewItem struct {
	Offer      Offer    `json:"offer"`
	TopMatch   *Match   `json:"top_match,omitempty"`
	Product    *Product `json:"product,omitempty"`
	Candidates []Match  `json:"candidates"`
}

// MatchedItem pairs a matched offer with its approved match and product.
type MatchedItem struct {
	Offer   Offer   `json:"offer"`
	Match   Match   `json:"match"`
	Product Product `json:"product"`
}
