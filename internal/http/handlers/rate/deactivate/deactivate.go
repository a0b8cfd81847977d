// Package deactivate реализует HTTP-обработчик отключения тарифа.
package deactivate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
)

// Handler обрабатывает запросы отключения тарифа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает отключение тарифа категории.
type Service interface {
	Deactivate(ctx context.Context, category string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отключение тарифа
// @Description Отключает тариф категории. Новые въезды этой категории будут отклоняться.
// @Tags Rates
// @Produce  json
// @Param category path string true "Категория транспорта"
// @Success 200 {object} response.Response "Тариф отключён"
// @Failure 404 {object} response.ErrorResponse "Активного тарифа нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rates/{category} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rate.deactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "category")))
	if err := h.service.Deactivate(r.Context(), category); err != nil {
		log.Error("failed to deactivate rate", slog.String("vehicle_category", category), sl.Err(err))
		status, resp := response.DomainError(err, "could not deactivate rate")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("rate deactivated", slog.String("vehicle_category", category))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"vehicle_category": category,
	}))
}
