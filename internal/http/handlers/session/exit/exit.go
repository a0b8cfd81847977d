// Package exit реализует HTTP-обработчик выезда с парковки.
//
// Handler закрывает сессию, рассчитывает стоимость стоянки и возвращает
// итоговую сумму с разбивкой. Тело запроса необязательно.
package exit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler обрабатывает запросы выезда.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис стоянки
	validate *validator.Validate // Проверка формата ID
}

// Service описывает интерфейс бизнес-логики выезда.
type Service interface {
	Exit(ctx context.Context, id string, req models.DummyExit) (*models.Session, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выезд транспорта
// @Description Закрывает сессию и рассчитывает стоимость. Время выезда по умолчанию текущее.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "ID сессии (UUID)"
// @Param request body models.DummyExit false "Время выезда и признак утерянного талона"
// @Success 200 {object} map[string]any "Сессия закрыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, ID или время"
// @Failure 404 {object} response.ErrorResponse "Сессия или тариф не найдены"
// @Failure 409 {object} response.ErrorResponse "Сессия уже закрыта"
// @Failure 422 {object} response.ErrorResponse "Некорректный тариф"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/exit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.exit"
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

	var req models.DummyExit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	session, err := h.service.Exit(r.Context(), id, req)
	if err != nil {
		log.Error("failed to close session", sl.Err(err))
		status, resp := response.DomainError(err, "could not close session")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("session closed", slog.String("session_id", id), sl.Money("total_fee", session.Fee.TotalFee))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
