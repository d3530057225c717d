package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/receipts"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

type receiptPayload struct {
	ID       string   `json:"id,omitempty"`
	Grams18k float64  `json:"grams_18k" validate:"gte=0"`
	Grams21k float64  `json:"grams_21k" validate:"gte=0"`
	BaseFees *float64 `json:"base_fees,omitempty" validate:"omitempty,gte=0"`
}

type receiptBulkCreateRequest struct {
	SupplierID string           `json:"supplier_id" validate:"required"`
	Receipts   []receiptPayload `json:"receipts" validate:"required,min=1,dive"`
}

func ReceiptList(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForPurchase(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ReceiptBulkCreate(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload receiptBulkCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]receipts.CreateReceiptInput, 0, len(payload.Receipts))
		for _, receipt := range payload.Receipts {
			inputs = append(inputs, receipts.CreateReceiptInput{
				ID:       receipt.ID,
				Grams18k: receipt.Grams18k,
				Grams21k: receipt.Grams21k,
				BaseFees: receipt.BaseFees,
			})
		}

		created, err := svc.BulkCreate(r.Context(), chi.URLParam(r, "purchaseID"), payload.SupplierID, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ReceiptDelete(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "receiptID")
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id})
	}
}
