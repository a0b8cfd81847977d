// Package quote реализует HTTP-обработчик предварительного расчёта стоимости
// для транспорта, который ещё на парковке.
package quote

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler обрабатывает запросы предварительного расчёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает расчёт стоимости активной сессии на момент at.
type Service interface {
	Quote(ctx context.Context, id string, at time.Time) (*fee.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Текущая стоимость стоянки
// @Description Считает стоимость активной сессии на момент at (RFC3339) или на текущий момент. Сессия не закрывается.
// @Tags Sessions
// @Produce  json
// @Param id path string true "ID сессии (UUID)"
// @Param at query string false "Момент расчёта, RFC3339"
// @Success 200 {object} map[string]any "Расчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или время"
// @Failure 404 {object} response.ErrorResponse "Сессия или тариф не найдены"
// @Failure 409 {object} response.ErrorResponse "Сессия уже закрыта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/quote [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.quote"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,uuid"); err != nil {
		log.Error("invalid session id", slog.String("id", id), sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid session id"))
		return
	}

	at, err := models.ParseTime(r.URL.Query().Get("at"), time.Time{})
	if err != nil {
		log.Error("invalid quote time", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(models.ErrInvalidTime.Error()))
		return
	}

	res, err := h.service.Quote(r.Context(), id, at)
	if err != nil {
		log.Error("failed to quote session", sl.Err(err))
		status, resp := response.DomainError(err, "could not calculate fee")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("session quoted", slog.String("session_id", id), sl.Money("total_fee", res.TotalFee))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session_id": id,
		"fee":        res,
	}))
}
