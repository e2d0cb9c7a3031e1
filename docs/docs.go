// Package docs registers the OpenAPI description served on /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/user": {
            "post": {"tags": ["user"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Email already registered"}}},
            "get": {"tags": ["user"], "summary": "Current user with budget, transactions and wallet", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/user/login": {
            "post": {"tags": ["user"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}, "429": {"description": "Locked out"}}}
        },
        "/user/{userId}": {
            "get": {"tags": ["analytics"], "summary": "Short-window dashboard", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "userId", "in": "path", "required": true, "type": "string"}, {"name": "window", "in": "query", "type": "integer", "default": 7}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not the caller"}}}
        },
        "/user/ai/{userId}": {
            "get": {"tags": ["analytics"], "summary": "Financial analysis with rule-based and AI insights", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "userId", "in": "path", "required": true, "type": "string"}, {"name": "window", "in": "query", "type": "integer", "default": 90}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No budget"}}}
        },
        "/user/ai/{userId}/recommendations": {
            "get": {"tags": ["analytics"], "summary": "Predicted transactions and suggestions", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "userId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/transaction": {
            "post": {"tags": ["transaction"], "summary": "Record an income or expense", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}}
        },
        "/transaction/{id}": {
            "get": {"tags": ["transaction"], "summary": "List a user's transactions", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/transaction/item/{txId}": {
            "get": {"tags": ["transaction"], "summary": "Get a transaction", "security": [{"BearerAuth": []}], "parameters": [{"name": "txId", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["transaction"], "summary": "Edit a transaction", "security": [{"BearerAuth": []}], "parameters": [{"name": "txId", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["transaction"], "summary": "Delete a transaction", "security": [{"BearerAuth": []}], "parameters": [{"name": "txId", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/budjet": {
            "post": {"tags": ["budget"], "summary": "Create the caller's budget", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Budget exists"}}},
            "get": {"tags": ["budget"], "summary": "The caller's budget", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "No budget"}}},
            "delete": {"tags": ["budget"], "summary": "Delete the caller's budget", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/budjet/{userId}": {
            "put": {"tags": ["budget"], "summary": "Create or replace a budget entry by name", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "userId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}}}
        },
        "/wallet/{id}": {
            "get": {"tags": ["wallet"], "summary": "The user's wallet", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["wallet"], "summary": "Override the wallet balance", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["wallet"], "summary": "Delete the wallet", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/reconcile": {
            "post": {"tags": ["reconciliation"], "summary": "Recompute wallet and budget totals from the ledger", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "correct", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "Drift report"}}}
        },
        "/categories": {
            "get": {"tags": ["category"], "summary": "Category catalog", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FinTrack API",
	Description:      "Personal finance ledger, budgets and spending analysis",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
