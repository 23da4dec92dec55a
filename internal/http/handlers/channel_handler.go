// Channel registry HTTP handlers.
//
// This file exposes the read-only registry endpoints:
//   - GET /channels  (channel configurations)
//   - GET /stores    (known store locations)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// ListChannels godoc
// @ID          listChannels
// @Summary     List channels
// @Description Returns every registered channel configuration, including endpoint,
// @Description auth and pagination settings. Auth secrets are never serialized.
// @Tags        Channels
// @Produce     json
//
// @Success     200  {array}  domain.Channel
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /channels [get]
func (h *Handlers) ListChannels(c *gin.Context) {
	channels, err := repo.ListChannels(c.Request.Context(), h.DB)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, channels)
}

// ListStores godoc
// @ID          listStores
// @Summary     List stores
// @Description Returns every store known to the warehouse.
// @Tags        Channels
// @Produce     json
//
// @Success     200  {array}  domain.Store
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /stores [get]
func (h *Handlers) ListStores(c *gin.Context) {
	stores, err := repo.ListStores(c.Request.Context(), h.DB)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stores)
}
