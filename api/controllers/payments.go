package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/payments"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

type paymentCreateRequest struct {
	ID        string  `json:"id,omitempty"`
	Date      string  `json:"date" validate:"required"`
	GramsPaid float64 `json:"grams_paid" validate:"gte=0"`
	FeesPaid  float64 `json:"fees_paid" validate:"gte=0"`
	KaratType string  `json:"karat_type" validate:"required,oneof=18 21"`
	Note      *string `json:"note,omitempty"`
}

type paymentUpdateRequest struct {
	Date      *string  `json:"date,omitempty"`
	GramsPaid *float64 `json:"grams_paid,omitempty" validate:"omitempty,gte=0"`
	FeesPaid  *float64 `json:"fees_paid,omitempty" validate:"omitempty,gte=0"`
	KaratType *string  `json:"karat_type,omitempty" validate:"omitempty,oneof=18 21"`
	Note      *string  `json:"note,omitempty"`
}

func PaymentList(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForPurchase(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PaymentSettlement(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settlement, err := svc.Settlement(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement)
	}
}

func PaymentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := parseDate(payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Create(r.Context(), chi.URLParam(r, "purchaseID"), payments.CreatePaymentInput{
			ID:        payload.ID,
			Date:      date,
			GramsPaid: payload.GramsPaid,
			FeesPaid:  payload.FeesPaid,
			KaratType: enums.KaratType(payload.KaratType),
			Note:      payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

func PaymentUpdate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input payments.UpdatePaymentInput
		if payload.Date != nil {
			date, err := parseDate(*payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Date = &date
		}
		if payload.KaratType != nil {
			karat := enums.KaratType(*payload.KaratType)
			input.KaratType = &karat
		}
		input.GramsPaid = payload.GramsPaid
		input.FeesPaid = payload.FeesPaid
		input.Note = payload.Note

		payment, err := svc.Update(r.Context(), chi.URLParam(r, "paymentID"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

func PaymentDelete(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "paymentID")
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id})
	}
}
