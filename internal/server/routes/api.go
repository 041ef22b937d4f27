package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/hooksig/internal/app/ports"
	"github.com/fr0stylo/hooksig/internal/app/services"
)

// APIRoutes registers the admin API.
type APIRoutes struct {
	orgs       *services.OrganizationService
	receipts   *services.ReceiptService
	adminToken string
}

// NewAPIRoutes constructs admin API routes.
func NewAPIRoutes(orgs *services.OrganizationService, receipts *services.ReceiptService, adminToken string) *APIRoutes {
	return &APIRoutes{orgs: orgs, receipts: receipts, adminToken: adminToken}
}

// RegisterRoutes registers admin API endpoints.
func (a *APIRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api", AdminAuth(a.adminToken))

	api.POST("/orgs", a.handleCreateOrganization)
	api.GET("/orgs", a.handleListOrganizations)
	api.GET("/orgs/:org", a.handleGetOrganization)
	api.PATCH("/orgs/:org", a.handleUpdateOrganization)
	api.POST("/orgs/:org/secret/rotate", a.handleRotateSecret)
	api.DELETE("/orgs/:org/secret/previous", a.handleRetirePreviousSecret)
	api.GET("/orgs/:org/receipts", a.handleListReceipts)
	api.GET("/orgs/:org/receipts/:id", a.handleGetReceipt)
	api.GET("/orgs/:org/stats", a.handleStats)
}

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type updateOrganizationRequest struct {
	Enabled *bool `json:"enabled"`
}

type organizationResponse struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	WebhookPath       string     `json:"webhook_path"`
	Enabled           bool       `json:"enabled"`
	HasPreviousSecret bool       `json:"has_previous_secret"`
	SecretRotatedAt   *time.Time `json:"secret_rotated_at,omitempty"`
	CreatedAt         string     `json:"created_at"`
	SigningSecret     string     `json:"signing_secret,omitempty"`
}

func (a *APIRoutes) handleCreateOrganization(c echo.Context) error {
	var req createOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	org, err := a.orgs.Create(c.Request().Context(), req.Name)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, organizationSummary(org, true))
}

func (a *APIRoutes) handleListOrganizations(c echo.Context) error {
	orgs, err := a.orgs.List(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	out := make([]organizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, organizationSummary(org, false))
	}
	return c.JSON(http.StatusOK, out)
}

func (a *APIRoutes) handleGetOrganization(c echo.Context) error {
	org, err := a.orgs.Find(c.Request().Context(), c.Param("org"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, organizationSummary(org, false))
}

func (a *APIRoutes) handleUpdateOrganization(c echo.Context) error {
	var req updateOrganizationRequest
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	org, err := a.orgs.SetEnabled(c.Request().Context(), c.Param("org"), *req.Enabled)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, organizationSummary(org, false))
}

func (a *APIRoutes) handleRotateSecret(c echo.Context) error {
	org, err := a.orgs.RotateSecret(c.Request().Context(), c.Param("org"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, organizationSummary(org, true))
}

func (a *APIRoutes) handleRetirePreviousSecret(c echo.Context) error {
	if err := a.orgs.RetirePreviousSecret(c.Request().Context(), c.Param("org")); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *APIRoutes) handleListReceipts(c echo.Context) error {
	filter := ports.ReceiptFilter{Outcome: strings.TrimSpace(c.QueryParam("outcome"))}
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		filter.Limit = limit
	}
	receipts, err := a.receipts.List(c.Request().Context(), c.Param("org"), filter)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, receipts)
}

func (a *APIRoutes) handleGetReceipt(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receipt id")
	}
	receipt, err := a.receipts.Get(c.Request().Context(), c.Param("org"), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, receipt)
}

func (a *APIRoutes) handleStats(c echo.Context) error {
	stats, err := a.receipts.Stats(c.Request().Context(), c.Param("org"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func organizationSummary(org ports.Organization, withSecret bool) organizationResponse {
	out := organizationResponse{
		ID:                org.ID,
		Name:              org.Name,
		Slug:              org.Slug,
		WebhookPath:       "/webhooks/" + org.Slug,
		Enabled:           org.Enabled,
		HasPreviousSecret: org.PreviousSigningSecret != "",
		CreatedAt:         org.CreatedAt,
	}
	if !org.SecretRotatedAt.IsZero() {
		rotatedAt := org.SecretRotatedAt
		out.SecretRotatedAt = &rotatedAt
	}
	if withSecret {
		out.SigningSecret = org.SigningSecret
	}
	return out
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownOrganization), errors.Is(err, services.ErrReceiptNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidOrganizationName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoPreviousSecret), errors.Is(err, ports.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
