package controllers

import (
	"net/http"

	"github.com/poofware/submission-service/internal/utils"
)

// NotFound answers requests no route matched.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithError(w, http.StatusNotFound, utils.RouteNotFoundMessage)
}

// MethodNotAllowed answers known paths requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithError(w, http.StatusMethodNotAllowed, utils.MethodNotAllowedMessage)
}
