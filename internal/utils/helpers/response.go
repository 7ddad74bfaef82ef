package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/logger"

	"go.uber.org/zap"
)

// MaxBodyBytes — предел размера JSON-тела запроса, выставляется при старте приложения.
var MaxBodyBytes int64 = 10 << 20

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Warn("Ошибка записи ответа", zap.Error(err))
	}
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Success: true, Data: data})
}

// Message — успешный ответ без данных, например после удаления.
func Message(w http.ResponseWriter, status int, msg string) {
	write(w, status, Response{Success: true, Message: msg})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, Response{Success: false, Error: errMsg})
}

// Fail отвечает по классу ошибки. Внутренние ошибки логируются и наружу не попадают.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("Внутренняя ошибка",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	Error(w, status, apperr.PublicMessage(err))
}

// DecodeJSON читает тело запроса в dst с ограничением размера.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Wrap(apperr.KindValidation, "Request body too large", err)
		case errors.Is(err, io.EOF):
			return apperr.Wrap(apperr.KindValidation, "Request body is required", err)
		default:
			return apperr.Wrap(apperr.KindValidation, "Invalid JSON body", err)
		}
	}
	return nil
}
