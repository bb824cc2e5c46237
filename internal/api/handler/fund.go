// Package handler implements the HTTP endpoints over the fund pipeline
// and its downstream analytics.
package handler

import (
	"net/http"

	"github.com/valuelab/fundpipe/internal/api/middleware"
	"github.com/valuelab/fundpipe/internal/api/response"
	"github.com/valuelab/fundpipe/internal/fund"
	"go.uber.org/zap"
)

// FundHandler serves the fund returns endpoint.
type FundHandler struct {
	service *fund.Service
	logger  *zap.Logger
}

// NewFundHandler creates a fund handler.
func NewFundHandler(service *fund.Service, log *zap.Logger) *FundHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FundHandler{service: service, logger: log}
}

// Returns handles GET /fund/{ticker}. Fetch, authorization and
// computation failures are not distinguished by status code: every
// internal failure collapses to a 500 with the error's message.
func (h *FundHandler) Returns(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	ident := middleware.IdentityFrom(r.Context())

	result, err := h.service.FundReturns(r.Context(), ident, ticker)
	if err != nil {
		h.logger.Error("fund pipeline failed",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}
