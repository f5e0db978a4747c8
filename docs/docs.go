// Package docs : OpenAPI описание API для http-swagger (/swagger/index.html).
// Шаблон поддерживается вручную вместе с аннотациями в internal/handler.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/signup": {
            "post": {
                "description": "Создаёт учётную запись с ролью standard и сразу открывает сессию: выставляет cookie accessToken и refreshToken",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Регистрация покупателя",
                "parameters": [
                    {
                        "description": "Тело запроса",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.SignupRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/requestresponse.UserResponse"}},
                    "400": {"description": "DuplicateIdentity или ValidationError", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Проверяет email и пароль, выставляет новые cookie accessToken и refreshToken",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Аутентификация пользователя",
                "parameters": [
                    {
                        "description": "Тело запроса",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.UserResponse"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "401": {"description": "InvalidCredentials", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "description": "Удаляет refresh токен пользователя из кэша и очищает обе cookie. Истёкший refresh токен тоже принимается.",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Завершение сессии",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.MessageResponse"}},
                    "401": {"description": "Нет cookie refreshToken", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/auth/refresh-token": {
            "post": {
                "description": "Выдаёт новый access токен по cookie refreshToken, если он совпадает с сохранённым в кэше. Refresh токен не меняется.",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Обновление access токена",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.RefreshTokenResponse"}},
                    "401": {"description": "Нет cookie, токен истёк или невалиден", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "403": {"description": "TokenStale: токен отозван или заменён новым входом", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/auth/profile": {
            "get": {
                "description": "Возвращает данные пользователя по access токену из cookie accessToken или заголовка Authorization",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Профиль текущего пользователя",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.UserResponse"}},
                    "401": {"description": "TokenMissing, TokenExpired или TokenInvalid", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/images/presign": {
            "post": {
                "description": "Только для администратора. Возвращает presigned PUT URL в S3 и ключ объекта products/<uuid>.<ext>",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "URL для загрузки изображения товара",
                "parameters": [
                    {
                        "description": "Тело запроса",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.PresignImageRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.PresignImageResponse"}},
                    "400": {"description": "Недопустимый тип файла", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "403": {"description": "Unauthorized: нужна роль admin", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/api/images/{key}": {
            "delete": {
                "description": "Только для администратора. Ключ передаётся URL-кодированным, например products%2F<uuid>.png",
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "Удаление изображения товара",
                "parameters": [
                    {"type": "string", "description": "Ключ объекта", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка зависимостей",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "requestresponse.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 401},
                "field": {"type": "string", "example": "password"},
                "kind": {"type": "string", "example": "TokenExpired"},
                "text": {"type": "string", "example": "access token expired"}
            }
        },
        "requestresponse.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/requestresponse.ErrorDetail"}
            }
        },
        "requestresponse.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "Secret123"}
            }
        },
        "requestresponse.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "User logged out successfully"}
            }
        },
        "requestresponse.PresignImageRequest": {
            "type": "object",
            "properties": {
                "contentType": {"type": "string", "example": "image/png"},
                "filename": {"type": "string", "example": "sneakers.png"}
            }
        },
        "requestresponse.PresignImageResponse": {
            "type": "object",
            "properties": {
                "expiresIn": {"type": "integer", "example": 900},
                "key": {"type": "string", "example": "products/8f0c2a3e-3c57-4d0e-9a77-2b1b7c1f0c11.png"},
                "uploadUrl": {"type": "string", "example": "https://bucket.s3.amazonaws.com/products/...?X-Amz-Signature=..."}
            }
        },
        "requestresponse.RefreshTokenResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."},
                "message": {"type": "string", "example": "Access token refreshed successfully"}
            }
        },
        "requestresponse.SignupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "name": {"type": "string", "example": "Alice"},
                "password": {"type": "string", "example": "Secret123"}
            }
        },
        "requestresponse.UserResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "User logged in successfully"},
                "user": {"$ref": "#/definitions/requestresponse.UserSummary"}
            }
        },
        "requestresponse.UserSummary": {
            "type": "object",
            "properties": {
                "_id": {"type": "string", "example": "b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"},
                "email": {"type": "string", "example": "a@x.com"},
                "name": {"type": "string", "example": "Alice"},
                "role": {"type": "string", "example": "standard"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront auth",
	Description:      "Аутентификация магазина: выпуск, обновление и отзыв сессий на cookie",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
