package models

// AlertsRequest filters the alerts listing endpoint. From/To accept RFC3339 or
// unix seconds; empty means an open bound.
type AlertsRequest struct {
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
