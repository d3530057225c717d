package validators

import (
	"net/http"
	"strconv"
	"time"

	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
)

// MonthParam reads the optional ?month=YYYY-MM query parameter. The wall
// clock is consulted here and nowhere deeper in the stack.
func MonthParam(r *http.Request) (types.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return types.MonthOf(time.Now().UTC()), nil
	}
	month, err := types.ParseMonth(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month")
	}
	return month, nil
}

// IntParam reads an optional integer query parameter, falling back to def.
func IntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return value, nil
}
