package handlers

import (
	"errors"
	"io"
	"net/http"

	"batch-release/internal/assembly"
	"batch-release/internal/middlewares"
	"batch-release/internal/templates"
)

// multipartSlack covers the multipart framing around the file itself.
const multipartSlack = 1 << 20

// POSTTemplateHandler replaces the certificate form with an uploaded PDF.
func POSTTemplateHandler(ctx *middlewares.AppContext) {
	limit := ctx.Config.Template.MaxUploadBytes

	ctx.Request.Body = http.MaxBytesReader(ctx.Response, ctx.Request.Body, limit+multipartSlack)
	if err := ctx.Request.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ctx.SetJSONError(http.StatusRequestEntityTooLarge, "template exceeds the upload limit")
			return
		}
		ctx.SetJSONError(http.StatusBadRequest, "expected a multipart upload")
		return
	}
	defer func() {
		_ = ctx.Request.MultipartForm.RemoveAll()
	}()

	files := ctx.Request.MultipartForm.File["file"]
	if len(files) != 1 {
		ctx.SetJSONError(http.StatusBadRequest, "exactly one file is required")
		return
	}
	if files[0].Size > limit {
		ctx.SetJSONError(http.StatusRequestEntityTooLarge, "template exceeds the upload limit")
		return
	}

	f, err := files[0].Open()
	if err != nil {
		ctx.Logger.Error("failed to open uploaded template", "error", err)
		ctx.SetJSONError(http.StatusBadRequest, "unreadable upload")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		ctx.Logger.Error("failed to read uploaded template", "error", err)
		ctx.SetJSONError(http.StatusBadRequest, "unreadable upload")
		return
	}

	tmpl, err := templates.Replace(ctx, ctx.Templates, raw)
	if err != nil {
		var loadErr *assembly.TemplateLoadError
		if errors.As(err, &loadErr) {
			ctx.SetJSONError(http.StatusUnprocessableEntity, loadErr.Error())
			return
		}
		ctx.Logger.Error("failed to store template", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "failed to store template")
		return
	}

	uploader := "anonymous"
	if p := ctx.GetPrincipal(); p != nil {
		uploader = p.SignerName()
	}
	ctx.Logger.Info("certificate template replaced", "size", len(raw), "uploaded_by", uploader, "filename", files[0].Filename)

	ctx.WriteJSON(http.StatusOK, TemplateUploadResponse{
		Status: "replaced",
		Size:   len(raw),
		Width:  tmpl.Width(),
		Height: tmpl.Height(),
	})
}
