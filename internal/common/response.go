package common

import (
	"encoding/json"
	"net/http"
)

// Problem is the error payload returned by the API.
type Problem struct {
	Title  string              `json:"title"`
	Detail string              `json:"detail,omitempty"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem renders p using its status code.
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// BadRequest renders a 400 for a rejected business operation.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, Problem{Title: "Invalid operation", Detail: detail, Status: http.StatusBadRequest})
}

// ValidationProblem renders field-level validation failures.
func ValidationProblem(w http.ResponseWriter, fields map[string][]string) {
	WriteProblem(w, Problem{
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: fields,
	})
}

// InternalError renders a generic 500 without leaking internals.
func InternalError(w http.ResponseWriter) {
	WriteProblem(w, Problem{
		Title:  "An unexpected error occurred",
		Detail: "Please try again later.",
		Status: http.StatusInternalServerError,
	})
}
