package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"go.uber.org/zap"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type"`
}

// writeError renders {success:false, error, type}; provider causes go to the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := payments.KindOf(err)
	msg := payments.PublicMessage(err)

	var verr *cart.ValidationError
	var pe *payments.Error
	switch {
	case errors.As(err, &verr):
		kind, msg = payments.KindValidation, verr.Error()
	case !errors.As(err, &pe) && kind == payments.KindProvider:
		zap.L().Named("httpx").Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Type: "internal_error"})
		return
	}
	if kind.HTTPStatus() >= 500 {
		zap.L().Named("httpx").Warn("payment request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, kind.HTTPStatus(), errorBody{Error: msg, Type: kind.Type()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Type: payments.KindValidation.Type()})
}
