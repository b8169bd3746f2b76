package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"batch-release/internal/assembly"
	"batch-release/internal/middlewares"
	"batch-release/internal/records"
	"batch-release/internal/release"

	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 64 << 10

// RedactEmail is used to redact emails (mostly for logs)
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	localRunes := []rune(parts[0])
	domain := parts[1]

	if len(localRunes) <= 2 {
		return strings.Repeat("*", len(localRunes)) + "@" + domain
	}

	first := string(localRunes[0])
	last := string(localRunes[len(localRunes)-1])
	middle := strings.Repeat("*", len(localRunes)-2)

	return first + middle + last + "@" + domain
}

// decodeJSON reads a small JSON body into v. An empty body leaves v untouched.
func decodeJSON(ctx *middlewares.AppContext, v interface{}) error {
	body := http.MaxBytesReader(ctx.Response, ctx.Request.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// viewerOwner identifies who may drive a viewer: the verified principal when
// there is one, otherwise the browser session.
func viewerOwner(ctx *middlewares.AppContext) string {
	if p := ctx.GetPrincipal(); p != nil {
		return "user:" + p.Iss + "|" + p.Sub
	}
	return ctx.SessionManager.ViewerOwner(ctx)
}

// lookupViewer resolves the {id} route parameter to a session owned by the
// caller. Sessions owned by someone else look exactly like missing ones.
func lookupViewer(ctx *middlewares.AppContext) (*release.Session, bool) {
	session, err := ctx.Viewers.Get(chi.URLParam(ctx.Request, "id"))
	if err != nil || session.Owner() != viewerOwner(ctx) {
		ctx.SetJSONError(http.StatusNotFound, release.ErrViewerNotFound.Error())
		return nil, false
	}
	session.Touch()
	return session, true
}

func newViewerResponse(ctx *middlewares.AppContext, snap release.Snapshot) (ViewerResponse, error) {
	resp := ViewerResponse{
		ID:          snap.ID,
		BatchNumber: snap.Record.BatchNumber,
		State:       snap.State,
		Exception:   snap.Exception,
		Signature:   snap.Signature,
		CanPrint:    snap.CanPrint,
	}

	if snap.Handle != "" {
		token, err := ctx.DocumentURLs.Sign(snap.Handle)
		if err != nil {
			return resp, fmt.Errorf("failed to sign document url: %w", err)
		}
		resp.DocumentURL = fmt.Sprintf("/api/v1/documents/%s?token=%s", url.PathEscape(snap.Handle), url.QueryEscape(token))
	}
	return resp, nil
}

func writeViewer(ctx *middlewares.AppContext, status int, session *release.Session) {
	resp, err := newViewerResponse(ctx, session.Snapshot())
	if err != nil {
		ctx.Logger.Error("failed to build viewer response", "viewer_id", session.ID(), "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	ctx.WriteJSON(status, resp)
}

// writeReleaseError maps workflow failures onto HTTP statuses.
func writeReleaseError(ctx *middlewares.AppContext, err error, msg string) {
	var fetchErr *records.RecordFetchError
	var loadErr *assembly.TemplateLoadError

	switch {
	case errors.Is(err, release.ErrViewerNotFound):
		ctx.SetJSONError(http.StatusNotFound, err.Error())
	case errors.Is(err, release.ErrNotSigned),
		errors.Is(err, release.ErrAlreadySigned),
		errors.Is(err, release.ErrSessionClosed),
		errors.Is(err, release.ErrSignInProgress):
		ctx.SetJSONError(http.StatusConflict, err.Error())
	case errors.Is(err, release.ErrNoSigner):
		ctx.SetJSONError(http.StatusUnauthorized, err.Error())
	case errors.As(err, &fetchErr) && fetchErr.NotFound():
		ctx.SetJSONError(http.StatusNotFound, fmt.Sprintf("batch %s not found", fetchErr.BatchNumber))
	case errors.As(err, &fetchErr):
		ctx.Logger.Error(msg, "error", err)
		ctx.SetJSONError(http.StatusBadGateway, "tracking service unavailable")
	case errors.As(err, &loadErr):
		ctx.Logger.Error(msg, "error", err)
		ctx.SetJSONError(http.StatusBadGateway, "certificate template is unusable")
	default:
		ctx.Logger.Error(msg, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, msg)
	}
}
