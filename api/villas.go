package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/service/villas"
)

type VillaHandler struct {
	service villas.VillaUseCase
}

type villaResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	PricePerNight float64 `json:"price_per_night"`
}

func NewVillaHandler(service villas.VillaUseCase) *VillaHandler {
	return &VillaHandler{service: service}
}

func (h *VillaHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *VillaHandler) list(c *gin.Context) {
	found, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]villaResponse, 0, len(found))
	for i := range found {
		out = append(out, toVillaResponse(&found[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *VillaHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVillaResponse(found))
}

func toVillaResponse(v *domain.Villa) villaResponse {
	return villaResponse{
		ID:            v.ID,
		Name:          v.Name,
		Address:       v.Address,
		PricePerNight: domain.Rupees(v.PricePerNightPaise),
	}
}
