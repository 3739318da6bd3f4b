// Package swagger registers the Bookmarks API document served at /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Bookmarks Support",
            "url": "https://github.com/mikepea/bookmarks"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Authenticate with email and password to receive access and refresh tokens",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get the authenticated user's profile",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.UserResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Create a new user account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.RegisterResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "409": {"description": "Email or username already taken", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/token/refresh": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Exchange a refresh token for a new access token. The refresh token stays valid.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.RefreshResponse"}},
                    "401": {"description": "Refresh token required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/bookmarks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Paginated list of the current user's bookmarks in creation order",
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "List bookmarks",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 5, "description": "Items per page (max 100)", "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bookmarks.ListResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Bookmark a URL and assign it a short code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "Create bookmark",
                "parameters": [
                    {
                        "description": "Bookmark details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/bookmarks.BookmarkRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/bookmarks.BookmarkResponse"}},
                    "400": {"description": "Invalid URL", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "409": {"description": "URL already exists", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/bookmarks/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "Bookmark stats",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bookmarks.StatsResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/bookmarks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "Get bookmark",
                "parameters": [
                    {"type": "integer", "description": "Bookmark ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bookmarks.BookmarkResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Replace url and body. The short code and visit count are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "Update bookmark",
                "parameters": [
                    {"type": "integer", "description": "Bookmark ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Bookmark details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/bookmarks.BookmarkRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bookmarks.BookmarkResponse"}},
                    "400": {"description": "Invalid URL", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "409": {"description": "URL already exists", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookmarks"],
                "summary": "Delete bookmark",
                "parameters": [
                    {"type": "integer", "description": "Bookmark ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.LoginResponse": {
            "type": "object",
            "properties": {
                "access": {"type": "string"},
                "refresh": {"type": "string"},
                "user": {"$ref": "#/definitions/auth.UserResponse"}
            }
        },
        "auth.RefreshResponse": {
            "type": "object",
            "properties": {
                "access": {"type": "string"}
            }
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "auth.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/auth.UserResponse"}
            }
        },
        "auth.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "username": {"type": "string"}
            }
        },
        "bookmarks.BookmarkRequest": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "bookmarks.BookmarkResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "short_code": {"type": "string"},
                "short_url": {"type": "string"},
                "updated_at": {"type": "string"},
                "url": {"type": "string"},
                "visits": {"type": "integer"}
            }
        },
        "bookmarks.ListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/bookmarks.BookmarkResponse"}},
                "meta": {"$ref": "#/definitions/bookmarks.Meta"}
            }
        },
        "bookmarks.Meta": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "has_prev": {"type": "boolean"},
                "next_page": {"type": "integer"},
                "page": {"type": "integer"},
                "pages": {"type": "integer"},
                "per_page": {"type": "integer"},
                "prev_page": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "bookmarks.StatResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "short_url": {"type": "string"},
                "url": {"type": "string"},
                "visits": {"type": "integer"}
            }
        },
        "bookmarks.StatsResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/bookmarks.StatResponse"}}
            }
        },
        "httpx.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token (refresh token for /auth/token/refresh). Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Bookmarks API",
	Description:      "Personal URL bookmarks with short redirect codes and visit counts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
