package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/keta/api"
	"github.com/dfryer1193/keta/catalog/application"
	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/catalog/resolver"
	"github.com/dfryer1193/keta/internal/middleware"
	"github.com/dfryer1193/keta/internal/schema"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

// Handler serves the catalog over HTTP. It shares one repository between
// all requests and builds a fresh resolver context for each GraphQL call.
type Handler struct {
	schema   *schema.Schema
	repo     domain.ImageRepository
	transfer *application.TransferService
	options  []resolver.Option
}

func NewHandler(s *schema.Schema, repo domain.ImageRepository, opts ...resolver.Option) *Handler {
	return &Handler{
		schema:   s,
		repo:     repo,
		transfer: application.NewTransferService(repo),
		options:  opts,
	}
}

func (h *Handler) PostGraphQL(c *gin.Context) {
	var req api.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	h.executeGraphQL(c, req)
}

func (h *Handler) GetGraphQL(c *gin.Context) {
	req := api.GraphQLRequest{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}

	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			badRequest(c, err)
			return
		}
	}

	h.executeGraphQL(c, req)
}

func (h *Handler) executeGraphQL(c *gin.Context, req api.GraphQLRequest) {
	if req.Query == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(c, "missing query"))
		return
	}

	rc := resolver.NewContext(h.repo, h.options...)
	result := h.schema.Execute(c.Request.Context(), rc, req)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Export(c *gin.Context) {
	images, err := h.transfer.Export(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, images)
}

func (h *Handler) Import(c *gin.Context) {
	var images []domain.Image
	if err := c.ShouldBindJSON(&images); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.transfer.Import(c.Request.Context(), images); err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			badRequest(c, err)
			return
		}
		serverError(c, err)
		return
	}

	c.String(http.StatusOK, "OK")
}

func errorBody(c *gin.Context, msg string) api.ErrorResponse {
	return api.ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	}
}

// badRequest answers 413 for bodies cut off by the size limit and 400 for
// anything else the client got wrong.
func badRequest(c *gin.Context, err error) {
	c.Error(err)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody(c, "request body too large"))
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(c, err.Error()))
}

func serverError(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(c, err.Error()))
}
