package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Pillar Community Portal API",
        "description": "Backend for the nonprofit public site and admin portal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Webhook", "description": "n8n content dispatcher"},
        {"name": "Content", "description": "Public site content"},
        {"name": "Applications", "description": "Assistance applications"},
        {"name": "Volunteers", "description": "Volunteer intake"},
        {"name": "Documents", "description": "Document library"},
        {"name": "Users", "description": "Portal accounts"},
        {"name": "Authentication", "description": "Login and tokens"},
        {"name": "Dashboard", "description": "Admin dashboard"}
    ],
    "paths": {
        "/webhook/content": {
            "get": {
                "tags": ["Webhook"],
                "summary": "Describe dispatcher capabilities",
                "responses": {
                    "200": {"description": "Capabilities payload"}
                }
            },
            "post": {
                "tags": ["Webhook"],
                "summary": "Relay an arbitrary payload",
                "parameters": [
                    {"name": "x-webhook-token", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Echoed payload"},
                    "401": {"description": "Invalid webhook token"}
                }
            },
            "put": {
                "tags": ["Webhook"],
                "summary": "Apply a content update",
                "parameters": [
                    {"name": "x-webhook-token", "in": "header", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/WebhookUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Update applied"},
                    "400": {"description": "Unknown content type or bad payload"},
                    "401": {"description": "Invalid webhook token"}
                }
            }
        },
        "/content/news": {
            "get": {
                "tags": ["Content"],
                "summary": "List news items",
                "responses": {
                    "200": {"description": "News items", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/programs": {
            "get": {
                "tags": ["Content"],
                "summary": "List programs",
                "responses": {
                    "200": {"description": "Programs", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/mission": {
            "get": {
                "tags": ["Content"],
                "summary": "Get mission statement",
                "responses": {
                    "200": {"description": "Mission payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/statistics": {
            "get": {
                "tags": ["Content"],
                "summary": "Get statistics block",
                "responses": {
                    "200": {"description": "Statistics payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Applications", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Submit an assistance application",
                "responses": {
                    "201": {"description": "Stored application"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/applications/export": {
            "get": {
                "tags": ["Applications"],
                "summary": "Export filtered applications as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/applications/{id}/status": {
            "put": {
                "tags": ["Applications"],
                "summary": "Update application status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated application"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/volunteers": {
            "get": {
                "tags": ["Volunteers"],
                "summary": "List volunteer applications",
                "responses": {
                    "200": {"description": "Volunteers", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Volunteers"],
                "summary": "Submit a volunteer application",
                "responses": {
                    "201": {"description": "Stored application"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/volunteers/export": {
            "get": {
                "tags": ["Volunteers"],
                "summary": "Export filtered volunteers as CSV",
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents with category counts",
                "responses": {
                    "200": {"description": "Documents", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Stored document"},
                    "400": {"description": "File too large or type not allowed"}
                }
            }
        },
        "/documents/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Export filtered documents as CSV",
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Issue a signed download link",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Signed token and URL"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List portal accounts",
                "responses": {
                    "200": {"description": "Users", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a portal account",
                "responses": {
                    "201": {"description": "Created user"},
                    "409": {"description": "Email already exists"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Token pair"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated dashboard counters",
                "responses": {
                    "200": {"description": "Dashboard statistics"}
                }
            }
        },
        "/me/menu": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Sidebar menu for the current role",
                "parameters": [
                    {"name": "perspective", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Menu items"}
                }
            }
        }
    },
    "definitions": {
        "WebhookUpdateRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "contentType": {"type": "string", "enum": ["news", "programs", "mission", "statistics"]},
                "data": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
