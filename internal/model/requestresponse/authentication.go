package requestresponse

import "storefront-auth/internal/model"

// SignupRequest : тело запроса регистрации
type SignupRequest struct {
	Name     string `json:"name" example:"Alice"`
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"Secret123"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"Secret123"`
}

// UserSummary : публичные данные пользователя, без хэша пароля
type UserSummary struct {
	ID    string     `json:"_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Name  string     `json:"name" example:"Alice"`
	Email string     `json:"email" example:"a@x.com"`
	Role  model.Role `json:"role" example:"standard"`
}

func NewUserSummary(user *model.User) *UserSummary {
	return &UserSummary{
		ID:    user.UUID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// UserResponse : ответ signup/login/profile
type UserResponse struct {
	User    *UserSummary `json:"user"`
	Message string       `json:"message,omitempty" example:"User logged in successfully"`
}

// RefreshTokenResponse : ответ на успешное обновление access токена
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Message     string `json:"message" example:"Access token refreshed successfully"`
}

// MessageResponse : ответ без данных, только сообщение
type MessageResponse struct {
	Message string `json:"message" example:"User logged out successfully"`
}
