package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

type errorPayload struct {
	Message string `json:"message"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

func (h *APIHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *APIHandler) StartSession(c *gin.Context) {
	var req domain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorPayload{Message: "invalid start payload"})
		return
	}
	view, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *APIHandler) GetSession(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) Answer(c *gin.Context) {
	var payload answerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}
	view, err := h.service.Answer(c.Request.Context(), c.Param("id"), payload.Choice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrSessionStarted),
		errors.Is(err, domain.ErrSessionFinished):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrCategoryRequired),
		errors.Is(err, domain.ErrChoiceNotFound),
		errors.Is(err, domain.ErrSessionNotStarted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNoQuestions):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
