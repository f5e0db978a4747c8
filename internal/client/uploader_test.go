package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-auth/internal/client"
	"storefront-auth/internal/model/requestresponse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UploadProductImage(t *testing.T) {
	var (
		srv          *httptest.Server
		uploaded     string
		uploadType   string
		uploadCookie int
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/images/presign", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("accessToken"); err != nil {
			writeError(w, http.StatusUnauthorized, "TokenMissing")
			return
		}
		var req requestresponse.PresignImageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "boots.png", req.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(requestresponse.PresignImageResponse{
			UploadURL: srv.URL + "/bucket/products/abc.png?X-Amz-Signature=sig",
			Key:       "products/abc.png",
			ExpiresIn: 900,
		})
	})
	mux.HandleFunc("/bucket/products/abc.png", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		uploadCookie = len(r.Cookies())
		uploadType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		uploaded = string(body)
		w.WriteHeader(http.StatusOK)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	session := newExpiredSession(t, srv.URL)
	c := client.New(srv.URL, session, client.Options{})

	payload := "png-bytes"
	key, err := c.UploadProductImage(context.Background(), "boots.png", "image/png", strings.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	assert.Equal(t, "products/abc.png", key)
	assert.Equal(t, payload, uploaded)
	assert.Equal(t, "image/png", uploadType)
	assert.Zero(t, uploadCookie, "cookie сессии не уходят в бакет")
}

func TestClient_UploadProductImage_StorageRejects(t *testing.T) {
	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/api/images/presign", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(requestresponse.PresignImageResponse{
			UploadURL: srv.URL + "/bucket/upload",
			Key:       "products/abc.png",
		})
	})
	mux.HandleFunc("/bucket/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("SignatureDoesNotMatch"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(srv.URL, newExpiredSession(t, srv.URL), client.Options{})

	key, err := c.UploadProductImage(context.Background(), "boots.png", "image/png", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Empty(t, key)
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}
