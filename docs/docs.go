// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/api/waitlist": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["waitlist"],
                "summary": "Join the waitlist",
                "parameters": [
                    {"description": "Email", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.JoinWaitlistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.JoinWaitlistResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/waitlist/count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["waitlist"],
                "summary": "Number of waitlist signups",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.WaitlistCountResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.WaitlistCountResponse"}}
                }
            }
        },
        "/api/blog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blog"],
                "summary": "List published posts",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BlogListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/blog/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blog"],
                "summary": "Get a published post",
                "parameters": [
                    {"type": "string", "description": "Post slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BlogPost"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/auth/signin/{provider}": {
            "get": {
                "tags": ["auth"],
                "summary": "Start OAuth sign-in",
                "parameters": [
                    {"type": "string", "description": "google, github, azure or apple", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "description": "Relative path to land on after sign-in", "name": "next", "in": "query"}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/auth/callback": {
            "get": {
                "tags": ["auth"],
                "summary": "Complete OAuth sign-in",
                "parameters": [
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query"},
                    {"type": "string", "description": "Relative path to land on after sign-in", "name": "next", "in": "query"}
                ],
                "responses": {"302": {"description": "Found"}}
            }
        },
        "/auth/check-mfa-redirect": {
            "get": {
                "tags": ["auth"],
                "summary": "Redirect to the next onboarding step",
                "responses": {"302": {"description": "Found"}}
            }
        },
        "/auth/signout": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {"302": {"description": "Found"}}
            }
        },
        "/api/auth/check-mfa": {
            "get": {
                "produces": ["application/json"],
                "tags": ["mfa"],
                "summary": "Onboarding status of the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MFAStatus"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/auth/send-mfa-pin": {
            "post": {
                "produces": ["application/json"],
                "tags": ["mfa"],
                "summary": "Email a fresh MFA PIN",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/auth/verify-mfa": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mfa"],
                "summary": "Verify the emailed MFA PIN",
                "parameters": [
                    {"description": "PIN", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.VerifyMFARequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/auth/set-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mfa"],
                "summary": "Record that the admin password has been set",
                "parameters": [
                    {"description": "Password status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Profile of the signed-in user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ProfileSummary"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/auth.GateResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.GateResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "gate": {"type": "string", "enum": ["NEEDS_MFA", "NEEDS_PASSWORD", "CLEARED"]}
            }
        },
        "handlers.BlogListResponse": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/models.BlogPost"}},
                "count": {"type": "integer"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "database": {"type": "string"}
            }
        },
        "handlers.JoinWaitlistRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string", "maxLength": 320}
            }
        },
        "handlers.JoinWaitlistResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "position": {"type": "integer"}
            }
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "handlers.SetPasswordRequest": {
            "type": "object",
            "properties": {
                "passwordSet": {"type": "boolean"}
            }
        },
        "handlers.VerifyMFARequest": {
            "type": "object",
            "required": ["pin"],
            "properties": {
                "pin": {"type": "string"}
            }
        },
        "handlers.WaitlistCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "field": {"type": "string"},
                "retryAfter": {"type": "integer"}
            }
        },
        "models.BlogPost": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "category": {"type": "string"},
                "featured_image": {"type": "string"},
                "author_name": {"type": "string"},
                "author_avatar": {"type": "string"},
                "read_time": {"type": "integer"},
                "published_at": {"type": "string"}
            }
        },
        "models.MFAStatus": {
            "type": "object",
            "properties": {
                "mfaEnabled": {"type": "boolean"},
                "mfaVerified": {"type": "boolean"},
                "requiresMfa": {"type": "boolean"},
                "pinExpired": {"type": "boolean"},
                "needsPasswordSetup": {"type": "boolean"},
                "role": {"type": "string", "enum": ["USER", "SELLER", "ADMIN"]}
            }
        },
        "services.ProfileSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "fullName": {"type": "string"},
                "avatarUrl": {"type": "string"},
                "role": {"type": "string"},
                "permissions": {"type": "array", "items": {"type": "string"}},
                "providers": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Createconomy API",
	Description:      "Waitlist, blog and OAuth onboarding backend for the Createconomy marketing site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
