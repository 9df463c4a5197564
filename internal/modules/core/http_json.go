package core

import (
	"encoding/json"
	"net/http"
)

func WriteOK(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, 200, body)
}

func WriteResponse(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	body interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if body == nil {
		return
	}

	responseBytes, err := json.Marshal(body)
	if err != nil {
		return
	}

	_, _ = w.Write(responseBytes)
}
