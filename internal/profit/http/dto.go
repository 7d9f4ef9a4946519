package http

import "github.com/nekogravitycat/stay-booking-backend/internal/profit"

// WindowRequest selects how far back revenue is considered. 0 means all history.
type WindowRequest struct {
	MonthsBack int `form:"months_back,default=0" binding:"min=0,max=240"`
}

type ForecastRequest struct {
	MonthsBack  int `form:"months_back,default=12" binding:"min=0,max=240"`
	MonthsAhead int `form:"months_ahead,default=3" binding:"min=1,max=36"`
}

// OwnerURI accepts either an owner UUID or the literal "me".
type OwnerURI struct {
	ID string `uri:"id" binding:"required"`
}

type TotalResponse struct {
	MonthsBack int     `json:"months_back"`
	Total      float64 `json:"total"`
}

type MonthAmountResponse struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type MonthlyResponse struct {
	MonthsBack int                   `json:"months_back"`
	Months     []MonthAmountResponse `json:"months"`
}

type ForecastResponse struct {
	History     []MonthAmountResponse `json:"history"`
	Predictions []MonthAmountResponse `json:"predictions"`
}

func newSeries(in []profit.MonthAmount) []MonthAmountResponse {
	out := make([]MonthAmountResponse, len(in))
	for i, m := range in {
		out[i] = MonthAmountResponse{Month: m.Month, Amount: m.Amount}
	}
	return out
}

func NewForecastResponse(f *profit.Forecast) ForecastResponse {
	return ForecastResponse{
		History:     newSeries(f.History),
		Predictions: newSeries(f.Predictions),
	}
}
