package api

import "net/http"

// Result is the structured outcome returned to the invoking system.
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// OK builds a success result with the given body.
func OK(body string) Result {
	return Result{StatusCode: http.StatusOK, Body: body}
}
