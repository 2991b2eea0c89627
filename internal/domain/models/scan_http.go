package models

// Requests for scanner HTTP endpoints.

type ScanRequest struct {
	Limit   int     `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
	MinAbsZ float64 `query:"min_abs_z" json:"min_abs_z" validate:"gte=0"`
}

type AlertsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
	Since string `query:"since" json:"since"`
}
