package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/recalc"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
)

// RecalcSupplier runs a synchronous recalculation pass for one supplier and
// month and returns the pass report. The worker handles the enqueued
// background passes; these endpoints exist for operator-driven repair.
func RecalcSupplier(svc recalc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.RecalculateSupplier(r.Context(), chi.URLParam(r, "supplierID"), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func RecalcMonth(svc recalc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := types.ParseMonth(chi.URLParam(r, "month"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month"))
			return
		}

		report, err := svc.RecalculateMonth(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func RecalcPurchase(svc recalc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := svc.RecalculateForPurchase(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reports)
	}
}
