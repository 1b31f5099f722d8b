package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/gravity-api/internal/domain"
	"go.ngs.io/gravity-api/internal/usecase"
)

// Handler handles HTTP requests for gravity field evaluations.
type Handler struct {
	evaluator *usecase.Evaluator
}

// NewHandler creates a new HTTP handler.
func NewHandler(evaluator *usecase.Evaluator) *Handler {
	return &Handler{
		evaluator: evaluator,
	}
}

// parseRequest builds an EvaluationRequest from the query parameters shared
// by the evaluation endpoints.
func parseRequest(c *gin.Context) (usecase.EvaluationRequest, error) {
	req := usecase.DefaultEvaluationRequest()
	req.Model = c.Query("model")
	req.Method = c.Query("method")

	// Position is mandatory.
	for _, p := range []struct {
		name   string
		target *float64
	}{
		{"x", &req.X},
		{"y", &req.Y},
		{"z", &req.Z},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			return req, fmt.Errorf("%s parameter is required", p.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %v", p.name, err)
		}
		*p.target = v
	}

	// Truncation is mandatory.
	for _, p := range []struct {
		name   string
		target *int
	}{
		{"degree", &req.Degree},
		{"order", &req.Order},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			return req, fmt.Errorf("%s parameter is required", p.name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %v", p.name, err)
		}
		*p.target = v
	}

	// Optional tuning parameters.
	if raw := c.Query("jacobian_degree"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid jacobian_degree: %v", err)
		}
		req.JacobianDegree = v
	}
	if raw := c.Query("jacobian_order"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid jacobian_order: %v", err)
		}
		req.JacobianOrder = v
	}
	if raw := c.Query("factor"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid factor: %v", err)
		}
		req.Factor = v
	}
	if raw := c.Query("fd_step"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid fd_step: %v", err)
		}
		req.FiniteDifferenceStep = v
	}
	if raw := c.Query("central_term"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("invalid central_term: %v", err)
		}
		req.CentralTerm = v
	}

	return req, nil
}

// GetAcceleration handles GET /v1/gravity/acceleration.
func (h *Handler) GetAcceleration(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.evaluator.Evaluate(&req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPotential handles GET /v1/gravity/potential.
func (h *Handler) GetPotential(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.evaluator.Evaluate(&req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model":          response.Model,
		"method":         response.Method,
		"degree":         response.Degree,
		"order":          response.Order,
		"potential_m2s2": response.Potential,
	})
}

// GetJacobian handles GET /v1/gravity/jacobian. When the Jacobian truncation
// is not given it defaults to the acceleration truncation.
func (h *Handler) GetJacobian(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JacobianDegree == 0 && req.JacobianOrder == 0 {
		req.JacobianDegree = req.Degree
		req.JacobianOrder = req.Order
	}

	response, err := h.evaluator.Evaluate(&req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// CompareMethods handles GET /v1/gravity/compare.
func (h *Handler) CompareMethods(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.evaluator.Compare(&req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.evaluator.Models()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}

// HealthCheck handles GET /healthz.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps evaluation failures to HTTP statuses. Capability and
// geometry errors describe a request the model cannot serve rather than a
// malformed one.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrJacobianUnavailable) ||
		errors.Is(err, domain.ErrUnsupportedParameter) ||
		errors.Is(err, domain.ErrSingularGeometry) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
