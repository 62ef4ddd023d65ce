// Package docs holds the Swagger spec served at /swagger. Regenerate with
// `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/payouts": {
            "get": {
                "tags": [
                    "payouts"
                ],
                "summary": "List payout summaries",
                "description": "One entry per place with at least one booking",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.PayoutSummary"
                            }
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/payouts/{placeId}": {
            "get": {
                "tags": [
                    "payouts"
                ],
                "summary": "Get the payout summary of a place",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.PayoutSummary"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/payouts/{placeId}/reconciliation": {
            "get": {
                "tags": [
                    "payouts"
                ],
                "summary": "Reconcile payout records of a place",
                "description": "Compares settled bookings, settlement records and the vendor's paid_so_far",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Reconciliation"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/payouts/{placeId}/settle": {
            "post": {
                "tags": [
                    "payouts"
                ],
                "summary": "Settle outstanding bookings",
                "description": "Pays out the selected outstanding bookings of a place in one transaction",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Acting admin operator",
                        "name": "X-Operator-ID",
                        "in": "header"
                    },
                    {
                        "description": "Bookings to settle",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/settlement.SettleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/settlement.SettleResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/payouts/{placeId}/settlements": {
            "get": {
                "tags": [
                    "payouts"
                ],
                "summary": "List settlements of a place",
                "description": "Newest first; the total count is returned in X-Total-Count",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Page size",
                        "name": "per_page",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/settlement.SettlementResponse"
                            }
                        },
                        "headers": {
                            "X-Total-Count": {
                                "type": "integer",
                                "description": "Total settlements"
                            }
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/settlements/{id}": {
            "get": {
                "tags": [
                    "settlements"
                ],
                "summary": "Get settlement by ID",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Settlement ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/settlement.SettlementResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": [
                    "bookings"
                ],
                "summary": "List bookings",
                "description": "Defaults to outstanding bookings when place_id is given, all bookings otherwise",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "place_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "outstanding, settled or all",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Booking"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/places/{placeId}/vendor": {
            "get": {
                "tags": [
                    "vendors"
                ],
                "summary": "Get the vendor of a place",
                "description": "Returns the vendor with bank details used for payouts, or null when the place has no vendor",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Vendor"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/places/{placeId}/notifications": {
            "get": {
                "tags": [
                    "notifications"
                ],
                "summary": "List vendor notifications",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Page size",
                        "name": "per_page",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Only unread notifications",
                        "name": "unread_only",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/notification.NotificationResponse"
                            }
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/places/{placeId}/notifications/unread-count": {
            "get": {
                "tags": [
                    "notifications"
                ],
                "summary": "Count unread vendor notifications",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "integer"
                            }
                        }
                    }
                }
            }
        },
        "/places/{placeId}/notifications/{id}/read": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Mark a notification as read",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Notification ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/places/{placeId}/notifications/read-all": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Mark all notifications of a place as read",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Place ID",
                        "name": "placeId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "models.Booking": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "place_id": {
                    "type": "string"
                },
                "payable_amount": {
                    "type": "number"
                },
                "settlement_id": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "place_name": {
                    "type": "string"
                }
            }
        },
        "models.PayoutSummary": {
            "type": "object",
            "properties": {
                "place_id": {
                    "type": "string"
                },
                "vendor_id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "place_name": {
                    "type": "string"
                },
                "num_bookings": {
                    "type": "integer"
                },
                "total_amount": {
                    "type": "number"
                },
                "amount_paid": {
                    "type": "number"
                },
                "balance": {
                    "type": "number"
                }
            }
        },
        "models.Reconciliation": {
            "type": "object",
            "properties": {
                "place_id": {
                    "type": "string"
                },
                "amount_paid": {
                    "type": "number"
                },
                "settlements_total": {
                    "type": "number"
                },
                "settlement_count": {
                    "type": "integer"
                },
                "paid_so_far": {
                    "type": "number"
                },
                "consistent": {
                    "type": "boolean"
                }
            }
        },
        "models.Vendor": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "place_id": {
                    "type": "string"
                },
                "business_name": {
                    "type": "string"
                },
                "vendor_full_name": {
                    "type": "string"
                },
                "vendor_email": {
                    "type": "string"
                },
                "vendor_phone_number": {
                    "type": "string"
                },
                "account_holder_name": {
                    "type": "string"
                },
                "account_number": {
                    "type": "string"
                },
                "ifsc_code": {
                    "type": "string"
                },
                "upi_id": {
                    "type": "string"
                },
                "paid_so_far": {
                    "type": "number"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "notification.NotificationResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "is_read": {
                    "type": "boolean"
                },
                "related_entity_type": {
                    "type": "string"
                },
                "related_entity_id": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "response.APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "booking_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/response.APIError"
                }
            }
        },
        "settlement.SettleRequest": {
            "type": "object",
            "required": [
                "booking_ids"
            ],
            "properties": {
                "booking_ids": {
                    "type": "array",
                    "minItems": 1,
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "settlement.SettleResponse": {
            "type": "object",
            "properties": {
                "settlement_id": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "settled_booking_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "settlement.SettlementResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "place_id": {
                    "type": "string"
                },
                "booking_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "booking_count": {
                    "type": "integer"
                },
                "amount": {
                    "type": "number"
                },
                "status": {
                    "type": "string"
                },
                "created_by": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Spotnere Admin Payout API",
	Description:      "Vendor payout reconciliation for the Spotnere admin panel.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
