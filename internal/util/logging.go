package util

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model/requestresponse"

	"github.com/go-chi/chi/v5/middleware"
)

type loggerKey struct{}

// WithLogger кладёт логгер в контекст
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom достаёт логгер из контекста (или возвращает slog.Default())
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

func LogError(message string, err error) error {
	slog.Error(message, slog.Any("err", err))
	return fmt.Errorf("%s: %w", message, err)
}

// RequestLogger кладёт в контекст логгер с request_id и пишет строку на каждый запрос
func RequestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(WithLogger(r.Context(), reqLogger))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			reqLogger.LogAttrs(r.Context(), slog.LevelInfo, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", ww.BytesWritten()),
			)
		})
	}
}

// HandleError переводит ошибку в JSON-ответ с кодом по её Kind.
// Детали Fatal ошибок только логируются, клиенту уходит общий текст.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	e := autherr.As(err)
	status := e.Kind.HTTPStatus()

	text := e.Message
	if e.Kind == autherr.Fatal {
		LoggerFrom(r.Context()).Error("внутренняя ошибка",
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		text = "internal server error"
	} else {
		LoggerFrom(r.Context()).Debug("ошибка запроса",
			slog.String("kind", string(e.Kind)),
			slog.Any("err", err),
		)
	}
	if text == "" {
		text = http.StatusText(status)
	}

	WriteJSON(w, status, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code:  status,
			Kind:  string(e.Kind),
			Field: e.Field,
			Text:  text,
		},
	})
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("ошибка кодирования ответа", slog.Any("err", err))
	}
}
