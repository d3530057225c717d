package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MostafaHamedd/purchases-tracker-api/api/responses"
	"github.com/MostafaHamedd/purchases-tracker-api/api/validators"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/purchases"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

const dateLayout = "2006-01-02"

type purchaseCreateRequest struct {
	ID      string  `json:"id,omitempty"`
	StoreID string  `json:"store_id" validate:"required"`
	Date    string  `json:"date" validate:"required"`
	Status  string  `json:"status,omitempty" validate:"omitempty,oneof=Pending Partial Paid Overdue"`
	DueDate *string `json:"due_date,omitempty"`
}

type purchaseUpdateRequest struct {
	Date    *string `json:"date,omitempty"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=Pending Partial Paid Overdue"`
	DueDate *string `json:"due_date,omitempty"`
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}

func PurchaseList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storeID := r.URL.Query().Get("store_id"); storeID != "" {
			list, err := svc.ListByStore(r.Context(), storeID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, list)
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PurchaseGet(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchase, err := svc.GetByID(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func PurchaseCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload purchaseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := parseDate(payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := purchases.CreatePurchaseInput{
			ID:      payload.ID,
			StoreID: payload.StoreID,
			Date:    date,
			Status:  enums.PurchaseStatus(payload.Status),
		}
		if payload.DueDate != nil {
			due, err := parseDate(*payload.DueDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DueDate = &due
		}

		purchase, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

func PurchaseUpdate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload purchaseUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input purchases.UpdatePurchaseInput
		if payload.Date != nil {
			date, err := parseDate(*payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Date = &date
		}
		if payload.Status != nil {
			status := enums.PurchaseStatus(*payload.Status)
			input.Status = &status
		}
		if payload.DueDate != nil {
			due, err := parseDate(*payload.DueDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DueDate = &due
		}

		purchase, err := svc.Update(r.Context(), chi.URLParam(r, "purchaseID"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func PurchaseDelete(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "purchaseID")
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id})
	}
}

func PurchaseSupplierList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListSuppliers(r.Context(), chi.URLParam(r, "purchaseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PurchaseSupplierRemove(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID := chi.URLParam(r, "supplierID")
		if err := svc.RemoveSupplier(r.Context(), chi.URLParam(r, "purchaseID"), supplierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"removed": supplierID})
	}
}
