// Package list реализует HTTP-обработчик получения списка тарифов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler обрабатывает запросы списка тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает получение всех тарифов.
type Service interface {
	List(ctx context.Context) ([]*models.Rate, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тарифов
// @Description Возвращает тарифы всех категорий, включая отключённые
// @Tags Rates
// @Produce  json
// @Success 200 {object} map[string]any "Тарифы"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rate.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rates, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list rates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(rates),
		"rates":      rates,
	}))
}
