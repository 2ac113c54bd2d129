package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/service/rating"
)

type RatingHandler struct {
	service rating.RatingUseCase
}

type ratingResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	VillaID    int64  `json:"villa_id"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
	RatingDate string `json:"rating_date"`
}

func NewRatingHandler(service rating.RatingUseCase) *RatingHandler {
	return &RatingHandler{service: service}
}

func (h *RatingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.GET("/villa/:villaId", h.listByVilla)
	router.GET("/villa/:villaId/average", h.villaAverage)
}

func (h *RatingHandler) submit(c *gin.Context) {
	var input rating.SubmitRatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRatingResponse(created))
}

func (h *RatingHandler) get(c *gin.Context) {
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
	c.JSON(http.StatusOK, toRatingResponse(found))
}

func (h *RatingHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var input rating.UpdateRatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRatingResponse(updated))
}

func (h *RatingHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RatingHandler) listByVilla(c *gin.Context) {
	villaID, err := pathID(c, "villaId")
	if err != nil {
		respondError(c, err)
		return
	}

	ratings, err := h.service.ListByVilla(c.Request.Context(), villaID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ratingResponse, 0, len(ratings))
	for i := range ratings {
		out = append(out, toRatingResponse(&ratings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RatingHandler) villaAverage(c *gin.Context) {
	villaID, err := pathID(c, "villaId")
	if err != nil {
		respondError(c, err)
		return
	}

	avg, err := h.service.VillaAverage(c.Request.Context(), villaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, avg)
}

func toRatingResponse(r *domain.Rating) ratingResponse {
	return ratingResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		VillaID:    r.VillaID,
		Score:      r.Score,
		Feedback:   r.Feedback,
		RatingDate: r.RatingDate.Format(dateFormat),
	}
}
