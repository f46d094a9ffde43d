// Package docs holds the OpenAPI document served under /swagger.
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
        "/challenges/{id}/chain": {
            "get": {
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "List every phase of a challenge's program",
                "parameters": [
                    {"type": "string", "description": "Challenge document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Challenge"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/challenges/{id}/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Compute the dashboard of a challenge",
                "parameters": [
                    {"type": "string", "description": "Challenge document id", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Return the last persisted dashboard instead of recomputing", "name": "cached", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ChallengeDashboard"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/dashboards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "List the most recently computed dashboards",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of dashboards (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ChallengeDashboard"}}}
                }
            }
        },
        "/metrics/normalize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Decode challenge metadata into a metrics snapshot",
                "parameters": [
                    {"description": "Metadata as a JSON string or object", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.NormalizeMetricsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.NormalizeMetricsResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List shop products",
                "parameters": [
                    {"type": "integer", "description": "Page number, starting at 1", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (max 100)", "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProductPage"}}
                }
            }
        },
        "/products/{id}/variations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List the variations of a product",
                "parameters": [
                    {"type": "integer", "description": "Product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ProductVariation"}}}
                }
            }
        },
        "/rewards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "List rewards",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Reward"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Create a reward",
                "parameters": [
                    {"description": "Reward", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RewardInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Reward"}}
                }
            }
        },
        "/rewards/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Get a reward",
                "parameters": [
                    {"type": "string", "description": "Reward document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reward"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Replace a reward",
                "parameters": [
                    {"type": "string", "description": "Reward document id", "name": "id", "in": "path", "required": true},
                    {"description": "Reward", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RewardInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reward"}}
                }
            },
            "delete": {
                "tags": ["rewards"],
                "summary": "Delete a reward",
                "parameters": [
                    {"type": "string", "description": "Reward document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/series/build": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Build chart rows from balance points",
                "parameters": [
                    {"description": "Balance points and threshold levels", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.BuildSeriesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SeriesRow"}}}
                }
            }
        },
        "/stages/resolve": {
            "post": {
                "description": "An unparseable phase resolves to the default stage and reports the parse error.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stages"],
                "summary": "Resolve the stage governing a phase",
                "parameters": [
                    {"description": "Phase and candidate stages", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ResolveStageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ResolveStageResponse"}}
                }
            }
        },
        "/users/{user_id}/preferences": {
            "get": {
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Get a user's dashboard preferences",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserPreferences"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Update part of a user's dashboard preferences",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.PreferencesPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserPreferences"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Challenge": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "documentId": {"type": "string"},
                "phase": {"type": "integer"},
                "parentId": {"type": "string"},
                "result": {"type": "string", "enum": ["init", "progress", "approved", "disapproved", "withdrawal", "retry"]},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "metadata": {"type": "object"},
                "broker_account": {"$ref": "#/definitions/domain.BrokerAccount"}
            }
        },
        "domain.ChallengeDashboard": {
            "type": "object",
            "properties": {
                "challenge": {"$ref": "#/definitions/domain.Challenge"},
                "stage": {"$ref": "#/definitions/domain.Stage"},
                "initialBalance": {"type": "number"},
                "metrics": {"$ref": "#/definitions/domain.MetricsSnapshot"},
                "metricsSource": {"type": "string", "enum": ["metadata", "provider", "empty"]},
                "progress": {"$ref": "#/definitions/domain.Progress"},
                "series": {"type": "array", "items": {"$ref": "#/definitions/domain.SeriesRow"}},
                "syntheticSeries": {"type": "boolean"},
                "generation": {"type": "string"},
                "sequence": {"type": "integer"},
                "computedAt": {"type": "string", "format": "date-time"}
            }
        },
        "domain.BrokerAccount": {
            "type": "object",
            "properties": {
                "login": {"type": "string"},
                "balance": {"type": "number"},
                "platform": {"type": "string"},
                "server": {"type": "string"},
                "idMeta": {"type": "string"}
            }
        },
        "domain.Gauge": {
            "type": "object",
            "properties": {
                "value": {"type": "number"},
                "current": {"type": "number"},
                "percentage": {"type": "number"},
                "colorBand": {"type": "string"}
            }
        },
        "domain.MetricsSnapshot": {
            "type": "object",
            "properties": {
                "trades": {"type": "integer"},
                "wonTrades": {"type": "integer"},
                "lostTrades": {"type": "integer"},
                "wonTradesPercent": {"type": "number"},
                "lostTradesPercent": {"type": "number"},
                "averageWin": {"type": "number"},
                "averageLoss": {"type": "number"},
                "balance": {"type": "number"},
                "equity": {"type": "number"},
                "profit": {"type": "number"},
                "maxDrawdown": {"type": "number"},
                "maxDrawdownPercent": {"type": "number"},
                "profitFactor": {"type": "number"},
                "expectancy": {"type": "number"},
                "deposits": {"type": "number"},
                "dailyGrowth": {"type": "array", "items": {"type": "object"}},
                "equityChart": {"type": "array", "items": {"type": "object"}},
                "currencySummary": {"type": "array", "items": {"type": "object"}}
            }
        },
        "domain.Progress": {
            "type": "object",
            "properties": {
                "target": {"$ref": "#/definitions/domain.Gauge"},
                "drawdown": {"$ref": "#/definitions/domain.Gauge"},
                "profitFactor": {"$ref": "#/definitions/domain.Gauge"}
            }
        },
        "domain.Stage": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "documentId": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "profitTarget": {"type": "number"},
                "maximumDailyLoss": {"type": "number"},
                "maximumTotalLoss": {"type": "number"},
                "minimumTradingDays": {"type": "integer"},
                "isDefault": {"type": "boolean"}
            }
        },
        "domain.PreferencesPatch": {
            "type": "object",
            "properties": {
                "hideBalances": {"type": "boolean"},
                "theme": {"type": "string", "enum": ["light", "dark", "system"]},
                "visibleWidgets": {"type": "object", "additionalProperties": {"type": "boolean"}}
            }
        },
        "domain.ProductPage": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "page": {"type": "integer"},
                "perPage": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "domain.ProductVariation": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "productId": {"type": "integer"},
                "sku": {"type": "string"},
                "price": {"type": "string"},
                "attributes": {"type": "array", "items": {"type": "object"}}
            }
        },
        "domain.Reward": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "documentId": {"type": "string"},
                "name": {"type": "string"},
                "percentage": {"type": "number"},
                "probability": {"type": "number"},
                "duration": {"type": "integer"},
                "usageCount": {"type": "integer"},
                "productVariations": {"type": "array", "items": {"type": "integer"}},
                "normalizedProbability": {"type": "number"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "domain.RewardInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "duration": {"type": "integer", "minimum": 0},
                "name": {"type": "string", "maxLength": 120},
                "percentage": {"type": "number", "maximum": 100, "minimum": 0},
                "probability": {"type": "number", "minimum": 0},
                "productVariations": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "domain.SeriesRow": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "balance": {"type": "number"},
                "max_drawdown": {"type": "number"},
                "profit_target": {"type": "number"},
                "synthetic": {"type": "boolean"}
            }
        },
        "domain.UserPreferences": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "theme": {"type": "string", "enum": ["light", "dark", "system"]},
                "hideBalances": {"type": "boolean"},
                "visibleWidgets": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "http.BuildSeriesRequest": {
            "type": "object",
            "properties": {
                "points": {"type": "array", "items": {"type": "object"}},
                "maxDrawdown": {"type": "number"},
                "profitTarget": {"type": "number"},
                "initialBalance": {"type": "number"}
            }
        },
        "http.NormalizeMetricsRequest": {
            "type": "object",
            "properties": {
                "metadata": {"type": "object"},
                "initialBalance": {"type": "number"}
            }
        },
        "http.NormalizeMetricsResponse": {
            "type": "object",
            "properties": {
                "metrics": {"$ref": "#/definitions/domain.MetricsSnapshot"},
                "stages": {"type": "array", "items": {"$ref": "#/definitions/domain.Stage"}}
            }
        },
        "http.ResolveStageRequest": {
            "type": "object",
            "properties": {
                "phase": {},
                "stages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "http.ResolveStageResponse": {
            "type": "object",
            "properties": {
                "stage": {"$ref": "#/definitions/domain.Stage"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Challenge Dashboard API",
	Description:      "Challenge metrics, stage resolution, progress gauges and chart series for funded-trader challenges.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
