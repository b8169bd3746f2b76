package handlers

import (
	"net/http"
	"strings"

	"batch-release/internal/middlewares"
)

// POSTViewerHandler fetches the batch's record and opens a viewer on its
// unsigned certificate.
func POSTViewerHandler(ctx *middlewares.AppContext) {
	var req CreateViewerRequest
	if err := decodeJSON(ctx, &req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	batchNumber := strings.TrimSpace(req.BatchNumber)
	if batchNumber == "" {
		ctx.SetJSONError(http.StatusBadRequest, "batchNumber is required")
		return
	}

	record, err := ctx.Records.FetchRecord(ctx, batchNumber)
	if err != nil {
		writeReleaseError(ctx, err, "failed to fetch record")
		return
	}

	session, err := ctx.Viewers.Create(ctx, viewerOwner(ctx), record)
	if err != nil {
		writeReleaseError(ctx, err, "failed to open viewer")
		return
	}

	ctx.Logger.Info("viewer opened", "viewer_id", session.ID(), "batch_number", batchNumber)
	writeViewer(ctx, http.StatusCreated, session)
}

func GETViewerHandler(ctx *middlewares.AppContext) {
	session, ok := lookupViewer(ctx)
	if !ok {
		return
	}
	writeViewer(ctx, http.StatusOK, session)
}

func PUTViewerExceptionHandler(ctx *middlewares.AppContext) {
	session, ok := lookupViewer(ctx)
	if !ok {
		return
	}

	var req ExceptionRequest
	if err := decodeJSON(ctx, &req); err != nil || req.Exception == nil {
		ctx.SetJSONError(http.StatusBadRequest, "exception must be true or false")
		return
	}

	if err := session.SetException(ctx, *req.Exception); err != nil {
		writeReleaseError(ctx, err, "failed to update exception")
		return
	}

	writeViewer(ctx, http.StatusOK, session)
}

// POSTViewerSignHandler signs as the authenticated principal.
func POSTViewerSignHandler(ctx *middlewares.AppContext) {
	session, ok := lookupViewer(ctx)
	if !ok {
		return
	}

	signer := ctx.GetPrincipal()
	if signer == nil {
		ctx.SetJSONError(http.StatusUnauthorized, "signing requires an authenticated user")
		return
	}

	sig, err := session.Sign(ctx, signer.SignerName())
	if err != nil {
		writeReleaseError(ctx, err, "failed to sign certificate")
		return
	}

	ctx.Logger.Info("certificate signed",
		"viewer_id", session.ID(),
		"signed_by", sig.SignedBy,
		"email", RedactEmail(signer.Email),
		"exception", sig.Exception,
	)
	writeViewer(ctx, http.StatusOK, session)
}

func POSTViewerPrintHandler(ctx *middlewares.AppContext) {
	session, ok := lookupViewer(ctx)
	if !ok {
		return
	}

	var req PrintRequest
	if err := decodeJSON(ctx, &req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := session.Print(ctx, req.Locator())
	if err != nil {
		writeReleaseError(ctx, err, "failed to print certificate")
		return
	}

	region := result.Region
	if !result.Printed {
		ctx.WriteJSON(http.StatusForbidden, PrintResponse{
			Printed: false,
			Notice:  result.Notice,
			Region:  &region,
		})
		return
	}

	ctx.WriteJSON(http.StatusOK, PrintResponse{
		Printed:   true,
		PrintURL:  "/api/v1/print/" + result.Ticket,
		ExpiresIn: int(ctx.PrintTickets.TTL().Seconds()),
		Region:    &region,
	})
}

func DELETEViewerHandler(ctx *middlewares.AppContext) {
	session, ok := lookupViewer(ctx)
	if !ok {
		return
	}

	ctx.Viewers.Close(session.ID())
	ctx.Logger.Debug("viewer closed", "viewer_id", session.ID())
	ctx.SetJSONStatus(http.StatusOK, "closed")
}
