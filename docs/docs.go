// Package docs registers the Swagger specification served at /docs/doc.json.
// Code generated by swag, then trimmed by hand. Regenerate with `swag init`.
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
        "/journey/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["journey"],
                "summary": "Journey campaign stats",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Evaluation date (YYYY-MM-DD), default today",
                        "name": "date",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/journey/{kind}/preview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["journey"],
                "summary": "Preview a journey batch",
                "description": "Dry-run selection and field rendering for a campaign. Never contacts SendGrid or mutates markers.",
                "parameters": [
                    {
                        "enum": ["pre-arrival", "post-play"],
                        "type": "string",
                        "description": "Campaign kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Restrict to one club",
                        "name": "club",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Evaluation date (YYYY-MM-DD), default today",
                        "name": "date",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/journey/{kind}/run": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["journey"],
                "summary": "Run a journey batch",
                "description": "Selects due bookings and dispatches emails. With dry_run no email is sent and no marker is written.",
                "parameters": [
                    {
                        "enum": ["pre-arrival", "post-play"],
                        "type": "string",
                        "description": "Campaign kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Streamsong Journey API",
	Description:      "Guest journey email automation: pre-arrival and post-play campaign previews, runs, and stats.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
