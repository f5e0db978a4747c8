package client

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"storefront-auth/internal/model/requestresponse"
)

// ErrSessionCleared : сессию сбросили (выход, новый вход), пока шло обновление токена
var ErrSessionCleared = errors.New("сессия сброшена во время обновления токена")

// Session : состояние клиента (cookie, текущий пользователь, поколение access токена).
// Явный объект вместо глобальных переменных, у каждого теста свой экземпляр.
//
// Session реализует http.CookieJar, поэтому Clear сбрасывает cookie и у http.Client,
// который ей пользуется.
type Session struct {
	mu         sync.RWMutex
	jar        *cookiejar.Jar
	user       *requestresponse.UserSummary
	generation uint64
}

func NewSession() *Session {
	return &Session{jar: newJar()}
}

func newJar() *cookiejar.Jar {
	// cookiejar.New возвращает ошибку только при некорректных Options
	jar, _ := cookiejar.New(nil)
	return jar
}

func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}

// User : текущий пользователь или nil
func (s *Session) User() *requestresponse.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) setUser(user *requestresponse.UserSummary) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Generation растёт при каждом обновлении access токена, входе и сбросе сессии.
// Запрос запоминает поколение перед отправкой: если к моменту ошибки оно уже сменилось,
// токен обновил кто-то другой и запрос достаточно повторить.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// setCookiesAt сохраняет cookie, только если поколение не сменилось с generation.
// Ответ на обновление, пришедший после Clear, не должен попасть в новый jar.
func (s *Session) setCookiesAt(generation uint64, u *url.URL, cookies []*http.Cookie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.jar.SetCookies(u, cookies)
	return true
}

// advanceFrom сдвигает поколение, если оно всё ещё равно generation
func (s *Session) advanceFrom(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.generation++
	return true
}

// clearFrom : Clear, если сессию ещё не сбросили и не открыли заново после generation
func (s *Session) clearFrom(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.user = nil
	s.jar = newJar()
	s.generation++
	return true
}

// authenticated : вход или регистрация прошли, cookie уже в jar
func (s *Session) authenticated(user *requestresponse.UserSummary) {
	s.mu.Lock()
	s.user = user
	s.generation++
	s.mu.Unlock()
}

// Clear : локальный аналог revoke, забывает пользователя и все cookie.
// Поколение тоже сдвигается: запросы, отправленные до сброса, не запускают новое обновление.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.jar = newJar()
	s.generation++
	s.mu.Unlock()
}
