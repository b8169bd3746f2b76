package handlers

import (
	"net/http"
	"strconv"

	"batch-release/internal/middlewares"
	"batch-release/internal/records"
)

// GETRecordsHandler passes a tracking search through to the upstream API.
func GETRecordsHandler(ctx *middlewares.AppContext) {
	query := ctx.Request.URL.Query()

	q := records.SearchQuery{
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
		Status:    query.Get("status"),
	}

	var err error
	if q.Page, err = intParam(query.Get("page")); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "page must be a positive integer")
		return
	}
	if q.Limit, err = intParam(query.Get("limit")); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	result, err := ctx.Records.Search(ctx, q)
	if err != nil {
		ctx.Logger.Error("tracking search failed", "error", err)
		ctx.SetJSONError(http.StatusBadGateway, "tracking service unavailable")
		return
	}

	ctx.WriteJSON(http.StatusOK, result)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
