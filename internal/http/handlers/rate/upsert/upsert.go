// Package upsert реализует HTTP-обработчик создания и замены тарифа категории.
package upsert

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler обрабатывает запросы сохранения тарифа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис тарифов
	validate *validator.Validate // Валидатор тела запроса
}

// Service описывает сохранение тарифа.
type Service interface {
	Upsert(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error)
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
// @Summary Сохранение тарифа
// @Description Создаёт или заменяет тариф категории и делает его активным. Кеш тарифа сбрасывается.
// @Tags Rates
// @Accept  json
// @Produce  json
// @Param category path string true "Категория транспорта"
// @Param request body models.DummyRate true "Тариф"
// @Success 200 {object} map[string]any "Тариф сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rates/{category} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rate.upsert"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "category")))

	var req models.DummyRate
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

	rate, err := h.service.Upsert(r.Context(), req.Schedule(category))
	if err != nil {
		log.Error("failed to save rate", sl.Err(err))
		status, resp := response.DomainError(err, "could not save rate")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("rate saved", slog.String("vehicle_category", category))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rate": rate,
	}))
}
