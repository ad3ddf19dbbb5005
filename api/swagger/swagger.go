package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rehab Center API",
        "description": "Therapy session scheduling and availability service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Therapists", "description": "Therapist directory"},
        {"name": "Beneficiaries", "description": "Beneficiary directory"},
        {"name": "Availability", "description": "Therapist availability records and slot checks"},
        {"name": "Sessions", "description": "Therapy session booking and lifecycle"},
        {"name": "Waitlist", "description": "Standing slot requests and gap-fill offers"},
        {"name": "Substitutions", "description": "Substitute therapist matching"},
        {"name": "Notifications", "description": "Notification inbox"},
        {"name": "Exports", "description": "Schedule exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/therapists": {
            "get": {
                "tags": ["Therapists"],
                "summary": "List therapists",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "specialization", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Therapists"],
                "summary": "Register therapist",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertTherapistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/therapists/{id}": {
            "get": {
                "tags": ["Therapists"],
                "summary": "Get therapist",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Therapists"],
                "summary": "Update therapist",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertTherapistRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Therapists"],
                "summary": "Deactivate therapist",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/therapists/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get availability record",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Create or replace availability record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/therapists/{id}/availability/check": {
            "get": {
                "tags": ["Availability"],
                "summary": "Check slot availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "end", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Availability decision", "schema": {"$ref": "#/definitions/AvailabilityDecision"}}
                }
            }
        },
        "/therapists/{id}/substitutes": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "Find substitute therapists",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "end", "in": "query", "required": true, "type": "string"},
                    {"name": "beneficiaryId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Ranked candidates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/therapists/{id}/schedule/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export therapist schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Schedule document"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions",
                "parameters": [
                    {"name": "therapistId", "in": "query", "type": "string"},
                    {"name": "beneficiaryId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Book a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot conflicts with an existing session"},
                    "422": {"description": "Therapist unavailable for the slot"}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sessions/{id}/reschedule": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Move a session to a new slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rescheduled"},
                    "409": {"description": "Conflict or terminal session"},
                    "422": {"description": "Therapist unavailable"}
                }
            }
        },
        "/sessions/{id}/status": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Update session status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated"}
                }
            }
        },
        "/sessions/{id}/notes": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session documentation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Attach SOAP documentation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DocumentSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Documented"},
                    "409": {"description": "Session not completed"}
                }
            }
        },
        "/waitlist": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "List waitlist entries",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "beneficiaryId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Waitlist"],
                "summary": "Register a waitlist entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWaitlistEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/waitlist/{id}/respond": {
            "post": {
                "tags": ["Waitlist"],
                "summary": "Respond to a slot offer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RespondRequest"}}
                ],
                "responses": {
                    "200": {"description": "Recorded"},
                    "409": {"description": "Entry is not in an offered state"}
                }
            }
        },
        "/waitlist/expire": {
            "post": {
                "tags": ["Waitlist"],
                "summary": "Expire stale offers",
                "responses": {
                    "200": {"description": "Count of expired offers"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List a recipient's notifications",
                "parameters": [
                    {"name": "recipientId", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark notification read",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        }
    },
    "definitions": {
        "UpsertTherapistRequest": {
            "type": "object",
            "required": ["email", "full_name", "department", "specializations"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "department": {"type": "string"},
                "specializations": {"type": "array", "items": {"type": "string"}},
                "languages": {"type": "array", "items": {"type": "string"}},
                "active": {"type": "boolean"}
            }
        },
        "UpsertAvailabilityRequest": {
            "type": "object",
            "required": ["recurring_schedule"],
            "properties": {
                "recurring_schedule": {"type": "array", "items": {"$ref": "#/definitions/AvailabilitySlot"}},
                "exceptions": {"type": "array", "items": {"type": "object"}},
                "preferences": {"type": "object"}
            }
        },
        "AvailabilitySlot": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time"],
            "properties": {
                "day_of_week": {"type": "string", "enum": ["SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"]},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "break_start": {"type": "string"},
                "break_end": {"type": "string"},
                "preferred_room": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "AvailabilityDecision": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "ScheduleSessionRequest": {
            "type": "object",
            "required": ["therapist_id", "beneficiary_id", "date", "start_time", "end_time"],
            "properties": {
                "therapist_id": {"type": "string"},
                "beneficiary_id": {"type": "string"},
                "plan_id": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "RescheduleSessionRequest": {
            "type": "object",
            "required": ["date", "start_time", "end_time"],
            "properties": {
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["SCHEDULED", "CONFIRMED", "COMPLETED", "CANCELLED_BY_PATIENT", "CANCELLED_BY_CENTER", "NO_SHOW"]}
            }
        },
        "DocumentSessionRequest": {
            "type": "object",
            "required": ["subjective", "objective", "assessment", "plan"],
            "properties": {
                "subjective": {"type": "string"},
                "objective": {"type": "string"},
                "assessment": {"type": "string"},
                "plan": {"type": "string"},
                "attendance": {"type": "string"},
                "rating": {"type": "integer"}
            }
        },
        "CreateWaitlistEntryRequest": {
            "type": "object",
            "required": ["beneficiary_id", "department", "preferred_days", "preferred_start", "preferred_end", "priority"],
            "properties": {
                "beneficiary_id": {"type": "string"},
                "department": {"type": "string"},
                "preferred_therapist_id": {"type": "string"},
                "preferred_days": {"type": "array", "items": {"type": "string"}},
                "preferred_start": {"type": "string"},
                "preferred_end": {"type": "string"},
                "priority": {"type": "string", "enum": ["HIGH", "NORMAL", "LOW"]}
            }
        },
        "RespondRequest": {
            "type": "object",
            "required": ["accept"],
            "properties": {
                "accept": {"type": "boolean"}
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
