// Package swagger provides API documentation
package swagger

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
        "/v1/applications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "List an organisation's applications",
                "parameters": [
                    {"type": "string", "description": "Organisation id", "name": "org_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ApplicationListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Extracts both documents, summarises them, scores the applicant and stores the result",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Submit a credit application",
                "parameters": [
                    {"type": "string", "name": "first_name", "in": "formData", "required": true},
                    {"type": "string", "name": "middle_name", "in": "formData"},
                    {"type": "string", "name": "last_name", "in": "formData", "required": true},
                    {"type": "string", "description": "home, personal, car, education or business", "name": "loan_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Applicant PAN", "name": "pan_id", "in": "formData", "required": true},
                    {"type": "string", "name": "loan_description", "in": "formData"},
                    {"type": "string", "name": "org_id", "in": "formData", "required": true},
                    {"type": "string", "name": "user_id", "in": "formData", "required": true},
                    {"type": "file", "description": "Bank statement (PDF or text)", "name": "bank_statement", "in": "formData", "required": true},
                    {"type": "file", "description": "Annual Information Statement (PDF or text)", "name": "ais", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/responses.ApplicationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/applications/{request_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Get an application",
                "parameters": [
                    {"type": "string", "name": "request_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ApplicationResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/applications/{request_id}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Approve or decline a pending application",
                "parameters": [
                    {"type": "string", "name": "request_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ApplicationResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/applications/{request_id}/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Ask a follow-up question about an application",
                "parameters": [
                    {"type": "string", "name": "request_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/applications/{request_id}/conversation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Read the conversation of an application",
                "parameters": [
                    {"type": "string", "name": "request_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ConversationResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/profiles": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Create or replace a financial planning profile",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.FinancialProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requests.FinancialProfileRequest"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/profiles/{applicant_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Get a financial planning profile",
                "parameters": [
                    {"type": "string", "name": "applicant_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requests.FinancialProfileRequest"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/profiles/{applicant_id}/advice": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Ask the financial assistant about a stored profile",
                "parameters": [
                    {"type": "string", "name": "applicant_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.AdviceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/expense-analysis": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Analyse spending in a bank statement",
                "parameters": [
                    {"type": "file", "name": "statement_file", "in": "formData", "required": true},
                    {"type": "file", "name": "additional_files", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ExpenseAnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/v1/welfare/eligibility": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Extract the eligibility criteria of a welfare scheme",
                "parameters": [
                    {"type": "string", "name": "url", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.EligibilityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Extract the eligibility criteria of a welfare scheme",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.EligibilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.EligibilityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "requests.EligibilityRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {"url": {"type": "string"}}
        },
        "responses.EligibilityResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "eligibility_criteria": {"type": "string"}
            }
        },
        "responses.TransactionResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "amount": {"type": "number"},
                "transaction_type": {"type": "string", "enum": ["credit", "debit"]},
                "amount_range": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "responses.ExpenseAnalysisResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "summary": {"type": "string"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/responses.TransactionResponse"}},
                "spending_by_amount_range": {"type": "object", "additionalProperties": {"type": "number"}},
                "spending_by_day": {"type": "object", "additionalProperties": {"type": "number"}},
                "spending_by_week": {"type": "object", "additionalProperties": {"type": "number"}},
                "debit_share_by_range": {"type": "object", "additionalProperties": {"type": "number"}},
                "unusual_transactions": {"type": "array", "items": {"type": "string"}},
                "suggestions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "requests.AdviceRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {"message": {"type": "string"}}
        },
        "requests.ChatRequest": {
            "type": "object",
            "required": ["query"],
            "properties": {"query": {"type": "string"}}
        },
        "requests.UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["approved", "declined"]}}
        },
        "requests.FinancialProfileRequest": {
            "type": "object",
            "required": ["pan_card_number"],
            "properties": {
                "pan_card_number": {"type": "string"},
                "retirement_planning": {"type": "string"},
                "insurance": {"type": "string"},
                "bank_accounts": {"type": "string"},
                "monthly_savings": {"type": "string"},
                "monthly_emis": {"type": "string"},
                "investment_channels": {"type": "string"},
                "existing_loans": {"type": "string"}
            }
        },
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "stage": {"type": "string"},
                "retryable": {"type": "boolean"},
                "request_id": {"type": "string"}
            }
        },
        "responses.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "responses.ApplicationResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "user_id": {"type": "string"},
                "org_id": {"type": "string"},
                "pan_id": {"type": "string"},
                "first_name": {"type": "string"},
                "middle_name": {"type": "string"},
                "last_name": {"type": "string"},
                "loan_type": {"type": "string"},
                "loan_description": {"type": "string"},
                "bank_summary": {"type": "string"},
                "ais_summary": {"type": "string"},
                "credit_verdict": {"type": "string"},
                "verdict": {"type": "object"},
                "decision": {"type": "string"},
                "verdict_error": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "responses.ApplicationSummaryResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "pan_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "loan_type": {"type": "string"},
                "decision": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "responses.ApplicationListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/responses.ApplicationSummaryResponse"}}
            }
        },
        "responses.ConversationResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "turns": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "user": {"type": "string"},
                            "ai": {"type": "string"},
                            "created_at": {"type": "string"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CreditX API",
	Description:      "Scores credit applications from uploaded documents and answers follow-up questions per application.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
