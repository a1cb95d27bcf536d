package identity

import (
	"net/http"
	"strings"
)

// Заголовки, через которые фронтенд передает идентичность.
const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"
)

// Identity представляет идентичность клиента запроса.
// UserID пуст для гостей; StorageKey всегда непуст и используется
// как ключ корзины/настроек (гость получает ключ по сессии).
type Identity struct {
	UserID    string
	SessionID string
}

// Authenticated сообщает, вошел ли пользователь в аккаунт
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// StorageKey возвращает ключ для записей пользователя в хранилище
func (id Identity) StorageKey() string {
	if id.UserID != "" {
		return "user:" + strings.ToLower(id.UserID)
	}
	if id.SessionID != "" {
		return "anon:" + id.SessionID
	}
	return "anon:guest"
}

// FromRequest извлекает идентичность из заголовков запроса.
// Проверка подлинности выполняется вне сервиса; здесь идентификатор
// трактуется как непрозрачная строка.
func FromRequest(r *http.Request) Identity {
	return Identity{
		UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
		SessionID: strings.TrimSpace(r.Header.Get(HeaderSessionID)),
	}
}
