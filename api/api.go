// Package api carries the JSON envelope shared by all explorer endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"

	"github.com/freechain/poa-explorer/internal/storage"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// QueryParams are the pagination parameters accepted by every listing
// endpoint.
type QueryParams struct {
	Page     int `schema:"page"`
	PageSize int `schema:"page_size"`
}

type PageResponse struct {
	Entries interface{}          `json:"entries"`
	Meta    storage.PageMetadata `json:"page_metadata"`
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func ParseQueryParams(r *http.Request) (QueryParams, error) {
	var params QueryParams
	if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
		return QueryParams{}, err
	}
	return params, nil
}

func (p QueryParams) PageParams() storage.PageParams {
	return storage.PageParams{Page: p.Page, PageSize: p.PageSize}
}

func writeError(c *gin.Context, code int, message string) {
	c.JSON(code, Error{Code: code, Message: message})
}

func BadRequestErrorHandler(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, err.Error())
}

func NotFoundErrorHandler(c *gin.Context) {
	writeError(c, http.StatusNotFound, "not found")
}

func InternalErrorHandler(c *gin.Context) {
	writeError(c, http.StatusInternalServerError, "An unexpected error occurred.")
}
