package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/monthly"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

type discountPreviewRequest struct {
	Grams18k float64  `json:"grams_18k" validate:"gte=0"`
	Grams21k float64  `json:"grams_21k" validate:"gte=0"`
	BaseFees *float64 `json:"base_fees,omitempty" validate:"omitempty,gte=0"`
}

func MonthlyTotal(svc monthly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := svc.MonthTotal(r.Context(), chi.URLParam(r, "supplierID"), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, total)
	}
}

func MonthlyHistory(svc monthly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.IntParam(r, "limit", 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), chi.URLParam(r, "supplierID"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func DiscountPreview(svc monthly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Preview(r.Context(), monthly.PreviewInput{
			SupplierID: chi.URLParam(r, "supplierID"),
			Month:      month,
			Grams18k:   payload.Grams18k,
			Grams21k:   payload.Grams21k,
			BaseFees:   payload.BaseFees,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
