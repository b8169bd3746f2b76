package handlers

import (
	"errors"
	"net/http"

	"batch-release/internal/middlewares"
	"batch-release/internal/viewer"

	"github.com/go-chi/chi/v5"
)

// GETDocumentHandler serves a live document to an embedded viewer. Frames
// cannot send a bearer header, so the signed query token stands in for it.
func GETDocumentHandler(ctx *middlewares.AppContext) {
	handle := chi.URLParam(ctx.Request, "handle")

	if err := ctx.DocumentURLs.Verify(ctx.Request.URL.Query().Get("token"), handle); err != nil {
		ctx.Logger.Debug("rejected document token", "handle", handle, "error", err)
		ctx.SetJSONError(http.StatusForbidden, "invalid or expired document link")
		return
	}

	doc, err := ctx.Documents.Open(handle)
	if err != nil {
		if errors.Is(err, viewer.ErrDocumentNotFound) {
			ctx.SetJSONError(http.StatusNotFound, "document is no longer available")
			return
		}
		ctx.Logger.Error("failed to open document", "handle", handle, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	ctx.WritePDF(doc)
}

// GETPrintHandler redeems a one-time print ticket.
func GETPrintHandler(ctx *middlewares.AppContext) {
	doc, err := ctx.PrintTickets.Redeem(ctx, chi.URLParam(ctx.Request, "token"))
	if err != nil {
		if errors.Is(err, viewer.ErrPrintTicketInvalid) || errors.Is(err, viewer.ErrDocumentNotFound) {
			ctx.SetJSONError(http.StatusNotFound, "print link expired or already used")
			return
		}
		ctx.Logger.Error("failed to redeem print ticket", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	ctx.WritePDF(doc)
}
