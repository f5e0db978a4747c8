package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model/requestresponse"
)

// APIError : ошибка, которую вернул сервер, с кодом и видом ошибки из тела ответа
type APIError struct {
	Status int
	Err    *autherr.Error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Err.Error())
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Options struct {
	// HTTPClient : транспорт и таймауты; Jar всегда заменяется на Session
	HTTPClient     *http.Client
	RefreshTimeout time.Duration
	Logger         *slog.Logger
}

// Client : клиент API магазина с автоматическим обновлением access токена
type Client struct {
	baseURL     string
	httpClient  *http.Client
	session     *Session
	coordinator *Coordinator
	logger      *slog.Logger

	// refreshClient без jar: cookie из ответа на обновление сохраняет сам Client
	refreshClient *http.Client
}

func New(baseURL string, session *Session, opts Options) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	httpClient.Jar = session

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	refreshClient := *httpClient
	refreshClient.Jar = nil

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    httpClient,
		refreshClient: &refreshClient,
		session:       session,
		logger:        logger,
	}
	c.coordinator = NewCoordinator(session, c.refreshAccessToken, opts.RefreshTimeout).WithLogger(logger)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// Signup регистрирует покупателя. Несовпадение паролей проверяется до запроса.
func (c *Client) Signup(ctx context.Context, name, email, password, confirmPassword string) (*requestresponse.UserSummary, error) {
	if password != confirmPassword {
		return nil, autherr.Validation("confirmPassword", "Passwords do not match")
	}

	var resp requestresponse.UserResponse
	err := c.send(ctx, http.MethodPost, "/api/auth/signup", mustJSON(requestresponse.SignupRequest{
		Name: name, Email: email, Password: password,
	}), &resp)
	if err != nil {
		return nil, err
	}

	c.session.authenticated(resp.User)
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*requestresponse.UserSummary, error) {
	var resp requestresponse.UserResponse
	err := c.send(ctx, http.MethodPost, "/api/auth/login", mustJSON(requestresponse.LoginRequest{
		Email: email, Password: password,
	}), &resp)
	if err != nil {
		return nil, err
	}

	c.session.authenticated(resp.User)
	return resp.User, nil
}

// Logout : локальная сессия очищается даже если сервер ответил ошибкой
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.session.Clear()
	return err
}

// AuthCheck загружает профиль текущего пользователя (с обновлением токена при необходимости)
func (c *Client) AuthCheck(ctx context.Context) (*requestresponse.UserSummary, error) {
	var resp requestresponse.UserResponse
	if err := c.Do(ctx, http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		c.session.setUser(nil)
		return nil, err
	}

	c.session.setUser(resp.User)
	return resp.User, nil
}

// Do выполняет авторизованный запрос. На 401 с TokenExpired/TokenMissing запрос ждёт
// общее обновление токена и повторяется ровно один раз. Если обновление не удалось,
// возвращается исходная ошибка запроса.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		payload = data
	}

	generation := c.session.Generation()
	err := c.send(ctx, method, path, payload, out)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Err.Kind == autherr.TokenStale {
		c.session.Clear()
		return err
	}
	if apiErr.Status != http.StatusUnauthorized || !apiErr.Err.Kind.Refreshable() {
		return err
	}

	if refreshErr := c.coordinator.Refresh(ctx, generation); refreshErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(refreshErr, ctxErr) {
			return refreshErr
		}
		c.logger.Debug("повтор запроса отменён", slog.String("path", path), slog.Any("err", refreshErr))
		return err
	}

	// повтор только один, ошибка повтора уходит вызывающему как есть
	return c.send(ctx, method, path, payload, out)
}

func (c *Client) refreshAccessToken(ctx context.Context, generation uint64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh-token", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, cookie := range c.session.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	if !c.session.setCookiesAt(generation, req.URL, resp.Cookies()) {
		return ErrSessionCleared
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body requestresponse.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil || body.Error.Kind == "" {
		return &APIError{
			Status: resp.StatusCode,
			Err:    autherr.New(kindFromStatus(resp.StatusCode), http.StatusText(resp.StatusCode)),
		}
	}

	return &APIError{
		Status: resp.StatusCode,
		Err: &autherr.Error{
			Kind:    autherr.Kind(body.Error.Kind),
			Field:   body.Error.Field,
			Message: body.Error.Text,
		},
	}
}

// kindFromStatus : для ответов без JSON тела (прокси, балансировщик)
func kindFromStatus(status int) autherr.Kind {
	switch status {
	case http.StatusUnauthorized:
		return autherr.TokenInvalid
	case http.StatusForbidden:
		return autherr.Unauthorized
	case http.StatusNotFound:
		return autherr.NotFound
	case http.StatusBadRequest:
		return autherr.ValidationError
	default:
		return autherr.Fatal
	}
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
