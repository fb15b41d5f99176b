package bookshelf

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the envelope of every API response.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes resp as JSON with the given status code.
func Respond(w http.ResponseWriter, r *http.Request, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

// Fail writes a client error envelope.
func Fail(w http.ResponseWriter, r *http.Request, code int, message string) {
	Respond(w, r, code, Response{Status: StatusFail, Message: message})
}
