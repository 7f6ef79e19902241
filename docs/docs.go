// Package docs registers the OpenAPI document served at /swagger/doc.json
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
                "tags": ["System"],
                "summary": "Liveness and worker status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Register a new user",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.RegisterUser"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Revoke the presented token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/auth/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Validate an access token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"token": {"type": "string"}}}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/contacts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "List contacts",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "description": "comma-joined", "name": "tags", "in": "query"},
                    {"type": "string", "name": "organization", "in": "query"},
                    {"type": "string", "description": "field, prefixed with - for descending", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Create a contact",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ContactInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/contacts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Get a contact",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Update a contact",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ContactPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Delete a contact",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/contacts/tags": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Distinct tags",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/contacts/organizations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contacts"],
                "summary": "Distinct organizations",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/contacts/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json", "text/vcard"],
                "tags": ["Contacts"],
                "summary": "Export every contact",
                "parameters": [{"enum": ["json", "vcard"], "type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "models.APIError": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "details": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/models.APIError"}
            }
        },
        "models.ContactPerson": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "relationship": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "models.ContactInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "Jane Doe"},
                "position": {"type": "string"},
                "organization": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "wikipediaUrl": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"},
                "contactPerson": {"$ref": "#/definitions/models.ContactPerson"}
            }
        },
        "models.ContactPatch": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "position": {"type": "string"},
                "organization": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "wikipediaUrl": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"},
                "contactPerson": {"$ref": "#/definitions/models.ContactPerson"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "user@example.com"},
                "password": {"type": "string"}
            }
        },
        "models.RegisterUser": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string", "example": "user@example.com"},
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "PR Contacts API",
	Description:      "Contact book backend with search, tag and organization filters and paginated listing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
