package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// APIErrorDetail is one error in the shared response envelope. Code is a
// stable machine-readable identifier ("not_found", "invalid_visibility",
// "range_too_large", ...); Detail is human-oriented and free to change.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse is the envelope every endpoint uses for failures, so
// clients parse one shape regardless of which handler produced it.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes the standard error body. Handlers reporting not_found
// for an entry hidden by visibility must pass the same detail string they use
// for a hash that never existed; the two responses have to stay
// byte-identical so existence never leaks.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{{
			Code:   code,
			Status: strconv.Itoa(httpStatus),
			Detail: detail,
		}},
	}

	_ = json.NewEncoder(w).Encode(resp)
}
