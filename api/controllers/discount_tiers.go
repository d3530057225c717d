package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/suppliers"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

type tierCreateRequest struct {
	ID                 string  `json:"id,omitempty"`
	KaratType          string  `json:"karat_type" validate:"required,oneof=18 21"`
	Name               string  `json:"name" validate:"required,min=1"`
	Threshold          float64 `json:"threshold" validate:"gte=0"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gte=0,lte=1"`
	IsProtected        bool    `json:"is_protected,omitempty"`
}

type tierUpdateRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Threshold          *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func TierList(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tiers, err := svc.ListTiers(r.Context(), chi.URLParam(r, "supplierID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tiers)
	}
}

func TierCreate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tierCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.CreateTier(r.Context(), chi.URLParam(r, "supplierID"), suppliers.CreateTierInput{
			ID:                 payload.ID,
			KaratType:          enums.KaratType(payload.KaratType),
			Name:               payload.Name,
			Threshold:          payload.Threshold,
			DiscountPercentage: payload.DiscountPercentage,
			IsProtected:        payload.IsProtected,
		}, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tier)
	}
}

func TierUpdate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tierUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.UpdateTier(r.Context(), chi.URLParam(r, "supplierID"), chi.URLParam(r, "tierID"), suppliers.UpdateTierInput{
			Name:               payload.Name,
			Threshold:          payload.Threshold,
			DiscountPercentage: payload.DiscountPercentage,
		}, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func TierDelete(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := validators.MonthParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tierID := chi.URLParam(r, "tierID")
		if err := svc.DeleteTier(r.Context(), chi.URLParam(r, "supplierID"), tierID, month); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": tierID})
	}
}
