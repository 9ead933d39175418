package models

// Requests for the monitor HTTP endpoints. Defined in domain for consistency and reuse.

type ResultsRequest struct {
	Sort   string `query:"sort" json:"sort" default:"rsi" validate:"oneof=rsi score growth fund"`
	Signal string `query:"signal" json:"signal" default:"" validate:"omitempty,oneof=strong_buy weak_buy hold weak_sell strong_sell unavailable"`
}

type RunRequest struct {
	Funds  []string `json:"funds" validate:"omitempty,dive,required"`
	Budget float64  `json:"budget" validate:"omitempty,gt=0"`
}

type HistoryRequest struct {
	Fund  string `query:"fund" json:"fund" validate:"required"`
	Limit int    `query:"limit" json:"limit" default:"30" validate:"gte=1,lte=1000"`
}
