// Package enter реализует HTTP-обработчик въезда на парковку.
//
// Handler принимает госномер и категорию транспорта, открывает сессию стоянки
// и возвращает её вместе с ID талона.
package enter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler управляет HTTP-запросами въезда.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис стоянки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики въезда.
type Service interface {
	Enter(ctx context.Context, req models.DummyEntry) (*models.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Въезд транспорта
// @Description Открывает сессию стоянки. Время въезда по умолчанию текущее.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param request body models.DummyEntry true "Данные въезда"
// @Success 201 {object} map[string]any "Сессия открыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или время"
// @Failure 404 {object} response.ErrorResponse "Нет тарифа для категории"
// @Failure 409 {object} response.ErrorResponse "Транспорт уже на парковке"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.enter"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.Enter(r.Context(), req)
	if err != nil {
		log.Error("failed to open session", sl.Err(err))
		status, resp := response.DomainError(err, "could not open session")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("session opened", slog.String("session_id", session.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
