// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must not be negative", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// DomainError сопоставляет доменную ошибку с HTTP-статусом и текстом для клиента.
// Неизвестные ошибки дают 500 и fallback, чтобы не раскрывать детали хранилища.
func DomainError(err error, fallback string) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrInvalidTime):
		return http.StatusBadRequest, Error(models.ErrInvalidTime.Error())
	case errors.Is(err, fee.ErrInvalidInterval):
		return http.StatusBadRequest, Error(fee.ErrInvalidInterval.Error())
	case errors.Is(err, fee.ErrMalformedRate):
		return http.StatusUnprocessableEntity, Error(fee.ErrMalformedRate.Error())
	case errors.Is(err, fee.ErrRateNotFound):
		return http.StatusNotFound, Error(fee.ErrRateNotFound.Error())
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound, Error(models.ErrSessionNotFound.Error())
	case errors.Is(err, models.ErrSessionClosed):
		return http.StatusConflict, Error(models.ErrSessionClosed.Error())
	case errors.Is(err, models.ErrVehicleAlreadyParked):
		return http.StatusConflict, Error(models.ErrVehicleAlreadyParked.Error())
	default:
		return http.StatusInternalServerError, Error(fallback)
	}
}
