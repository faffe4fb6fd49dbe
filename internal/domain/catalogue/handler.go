package catalogue

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cvc/cvc/internal/domain/settings"
)

type Handler struct {
	syncer        *Syncer
	immunizations ImmunizationRepository
	medications   MedicationRepository
	settings      *settings.Service
}

func NewHandler(syncer *Syncer, immunizations ImmunizationRepository,
	medications MedicationRepository, props *settings.Service) *Handler {
	return &Handler{
		syncer:        syncer,
		immunizations: immunizations,
		medications:   medications,
		settings:      props,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/catalogue/sync", h.Sync)
	api.GET("/catalogue/status", h.Status)
}

// Sync runs one catalogue sync and returns its report. A run already in
// flight is reported as a conflict.
func (h *Handler) Sync(c echo.Context) error {
	report, err := h.syncer.Run(c.Request().Context())
	if errors.Is(err, ErrRunInProgress) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, report)
	}
	return c.JSON(http.StatusOK, report)
}

type statusResponse struct {
	LastRun       RunReport `json:"last_run"`
	LastUpdated   *string   `json:"last_updated,omitempty"`
	FirstSyncDate *string   `json:"first_sync_date,omitempty"`
	Counts        struct {
		Immunizations      int64 `json:"immunizations"`
		Medications        int64 `json:"medications"`
		LotNumbers         int64 `json:"lot_numbers"`
		ProductIdentifiers int64 `json:"product_identifiers"`
	} `json:"counts"`
}

// Status returns the last run report, the sync watermarks and the current
// table counts.
func (h *Handler) Status(c echo.Context) error {
	ctx := c.Request().Context()
	resp := statusResponse{LastRun: h.syncer.Status()}

	if t, err := h.settings.LastUpdated(ctx); err == nil && t != nil {
		v := t.Format(settings.DateLayout)
		resp.LastUpdated = &v
	}
	if t, err := h.settings.FirstSyncDate(ctx); err == nil && t != nil {
		v := t.Format("2006-01-02T15:04:05Z07:00")
		resp.FirstSyncDate = &v
	}

	var err error
	if resp.Counts.Immunizations, err = h.immunizations.Count(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if resp.Counts.Medications, err = h.medications.Count(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if resp.Counts.LotNumbers, err = h.medications.CountLotNumbers(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if resp.Counts.ProductIdentifiers, err = h.medications.CountProductIdentifiers(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}
