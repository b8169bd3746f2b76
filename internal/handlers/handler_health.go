package handlers

import (
	"net/http"

	"batch-release/internal/middlewares"
	"batch-release/internal/version"
)

type HealthResponse struct {
	Status      string       `json:"status"`
	Version     version.Info `json:"version"`
	RenderMode  string       `json:"render_mode"`
	OpenViewers int          `json:"open_viewers"`
}

func HandlerHealth(ctx *middlewares.AppContext) {
	response := HealthResponse{
		Status:     "OK",
		Version:    version.Get(),
		RenderMode: ctx.Config.Render.Mode,
	}
	if ctx.Viewers != nil {
		response.OpenViewers = ctx.Viewers.Len()
	}
	ctx.WriteJSON(http.StatusOK, response)
}
