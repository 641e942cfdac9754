package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/metrics"
	"github.com/stemsi/class-subjects/internal/middleware"
	"github.com/stemsi/class-subjects/internal/model"
	"github.com/stemsi/class-subjects/internal/response"
	"github.com/stemsi/class-subjects/internal/service"
	"github.com/stemsi/class-subjects/internal/validator"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// GetAll godoc
// GET /api/subjects
// Returns every stored record as a bare JSON array, oldest first.
func (h *SubjectHandler) GetAll(c *gin.Context) {
	records, err := h.subjectService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create godoc
// POST /api/subjects
// Appends {class, subjects} to the store. Any decodable body is accepted
// unless the server runs in strict mode.
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectsRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		metrics.SubmissionErrorsTotal.WithLabelValues("payload").Inc()
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if h.subjectService.Strict() {
		strict := model.StrictSubjectsRequest{Class: req.Class, Subjects: req.Subjects}
		if fields := validator.Struct(&strict); fields != nil {
			metrics.SubmissionErrorsTotal.WithLabelValues("invalid").Inc()
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidSubjects, fields)
			return
		}
	}

	if err := h.subjectService.Create(c.Request.Context(), req); err != nil {
		var invalid *service.InvalidSubjectsError
		if errors.As(err, &invalid) {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidSubjects, invalid.Fields)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if claims := middleware.GetClaims(c); claims != nil {
		zerolog.Ctx(c.Request.Context()).Info().
			Str("operator", claims.Subject).
			Str("class", req.Class).
			Msg("Subjects stored by operator")
	}

	response.Acknowledge(c, http.StatusOK, model.SubjectsSavedMessage)
}

// ListClasses godoc
// GET /api/classes
// Lists the classes subjects can be entered for.
func (h *SubjectHandler) ListClasses(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"classes": model.Classes})
}
