package requestresponse

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code  int    `json:"code" example:"401"`
	Kind  string `json:"kind" example:"TokenExpired"`
	Field string `json:"field,omitempty" example:"password"`
	Text  string `json:"text" example:"access token expired"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
