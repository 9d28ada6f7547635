// Package docs registers the OpenAPI description served under /swagger
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@straye.io"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/activities": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Activities"],
                "summary": "List activities",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Activities"],
                "summary": "Create activity",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/activities/stats": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Activity counts by status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/activities/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Get activity by ID",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Update activity",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Delete activity",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/activities/{id}/submit": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Submit activity for approval",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/activities/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Approve activity",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/activities/{id}/decline": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Activities"],
                "summary": "Decline activity",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Products"],
                "summary": "Search products",
                "parameters": [{"type": "string", "name": "query", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotation-numbers": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "List quotation numbers",
                "parameters": [{"type": "string", "name": "prefix", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotation-numbers/generate": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "Generate the next quotation number",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotations/calculate": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "Calculate quotation totals",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotations/preview": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["text/html"],
                "tags": ["Quotations"],
                "summary": "Render the HTML preview",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotations/pdf": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["Quotations"],
                "summary": "Render the quotation PDF",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/quotations/{brand}/spreadsheet": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "Build the quotation spreadsheet",
                "parameters": [{"type": "string", "name": "brand", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quotations/export": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "Export a quotation behind a temporary download link",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/downloads/{token}": {
            "get": {
                "tags": ["Quotations"],
                "summary": "Download an export once",
                "parameters": [{"type": "string", "name": "token", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/export-sessions/current": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "tags": ["Quotations"],
                "summary": "Report an interrupted export",
                "parameters": [{"type": "string", "name": "sessionId", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "API Key for system operations",
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        },
        "BearerAuth": {
            "description": "JWT Bearer token",
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
	Title:            "Straye Sales Ops API",
	Description:      "Sales activity logging, quotation pricing and document generation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
