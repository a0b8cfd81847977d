// Package calculate реализует HTTP-обработчик расчёта стоимости стоянки
// для произвольных времён въезда и выезда без открытия сессии.
package calculate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/http/response"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Handler обрабатывает запросы расчёта стоимости.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает расчёт стоимости без сессии.
type Service interface {
	Calculate(ctx context.Context, req models.DummyCalculate) (*fee.Result, error)
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
// @Summary Расчёт стоимости
// @Description Считает стоимость стоянки по активному тарифу категории. Сессия не создаётся.
// @Tags Fees
// @Accept  json
// @Produce  json
// @Param request body models.DummyCalculate true "Категория, время въезда и выезда"
// @Success 200 {object} map[string]any "Расчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, время или интервал"
// @Failure 404 {object} response.ErrorResponse "Нет тарифа для категории"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /fees/calculate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fee.calculate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCalculate
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

	res, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		log.Error("failed to calculate fee", sl.Err(err))
		status, resp := response.DomainError(err, "could not calculate fee")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Debug("fee calculated", slog.String("vehicle_category", req.VehicleCategory), sl.Money("total_fee", res.TotalFee))
	render.JSON(w, r, response.StatusOKWithData(res))
}
