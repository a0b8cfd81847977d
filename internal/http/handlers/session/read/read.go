// Package read реализует HTTP-обработчик для получения сессии стоянки по ID талона.
//
// Handler возвращает сессию вместе с текущей длительностью стоянки.
package read

import (
	"context"
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

// Handler обрабатывает запросы на получение сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис стоянки
	validate *validator.Validate // Проверка формата ID
}

// Service описывает интерфейс бизнес-логики чтения сессии.
type Service interface {
	Read(ctx context.Context, id string) (*models.SessionView, error)
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
// @Summary Получить сессию
// @Description Возвращает сессию стоянки с текущей длительностью.
// @Tags Sessions
// @Produce  json
// @Param id path string true "ID сессии (UUID)"
// @Success 200 {object} map[string]any "Сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.read"

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

	res, err := h.service.Read(r.Context(), id)
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		status, resp := response.DomainError(err, "could not read session")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("success to read session", slog.String("session_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": res,
	}))
}
