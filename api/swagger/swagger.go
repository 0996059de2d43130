package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu Fleet API",
        "description": "School resource management: subjects, lesson plans, equipment fleets and reservations.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Subjects", "description": "Subjects and their equipment fleets"},
        {"name": "Lesson Plans", "description": "Lesson plans and equipment allocation"},
        {"name": "Equipment", "description": "Inventory, fleets and repair lifecycle"},
        {"name": "Curriculum", "description": "Curriculum view, recommendations and export"},
        {"name": "Requests", "description": "Equipment reservations"}
    ],
    "paths": {
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Current principal", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}}}
        },
        "/subjects": {
            "get": {"tags": ["Subjects"], "summary": "List subjects", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Subjects"], "summary": "Create subject",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error or code exists"}}
            }
        },
        "/subjects/{id}": {
            "get": {"tags": ["Subjects"], "summary": "Get subject", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Subjects"], "summary": "Update subject", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Subjects"], "summary": "Delete subject", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Subject has lesson plans"}}}
        },
        "/lesson-plans": {
            "get": {
                "tags": ["Lesson Plans"], "summary": "List lesson plans",
                "parameters": [{"name": "subject_id", "in": "query", "type": "string"}, {"name": "teacher_id", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"tags": ["Lesson Plans"], "summary": "Create lesson plan", "responses": {"201": {"description": "Created"}}}
        },
        "/lesson-plans/bulk": {
            "post": {"tags": ["Lesson Plans"], "summary": "Create lesson plans in bulk", "responses": {"201": {"description": "Created"}}}
        },
        "/lesson-plans/{id}/request-equipment": {
            "post": {
                "tags": ["Lesson Plans"], "summary": "Reserve equipment for a lesson, cycling through fleets",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestEquipmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Reservations created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lesson plan not found"},
                    "400": {"description": "Validation error or every fleet exhausted"}
                }
            }
        },
        "/teacher/stats": {
            "get": {"tags": ["Lesson Plans"], "summary": "Teacher dashboard statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/equipment": {
            "get": {
                "tags": ["Equipment"], "summary": "List equipment",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "fleet", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Equipment"], "summary": "Create equipment",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EquipmentRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error or serial exists"}}
            }
        },
        "/equipment/groups": {"get": {"tags": ["Equipment"], "summary": "Fleet groups", "responses": {"200": {"description": "OK"}}}},
        "/equipment/low-stock": {"get": {"tags": ["Equipment"], "summary": "Fleets below the stock threshold", "responses": {"200": {"description": "OK"}}}},
        "/equipment/search/{serial}": {"get": {"tags": ["Equipment"], "summary": "Find by serial fragment", "parameters": [{"name": "serial", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/equipment/fleet/{baseSerial}/next-available": {
            "get": {
                "tags": ["Equipment"], "summary": "Next free unit in a fleet",
                "parameters": [
                    {"name": "baseSerial", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No available items"}}
            }
        },
        "/equipment/repair": {"put": {"tags": ["Equipment"], "summary": "Send equipment to repair", "responses": {"200": {"description": "OK"}}}},
        "/equipment/repair-complete": {"put": {"tags": ["Equipment"], "summary": "Return equipment from repair", "responses": {"200": {"description": "OK"}}}},
        "/equipment/retire-fleet": {"put": {"tags": ["Equipment"], "summary": "Retire every unit of a fleet", "responses": {"200": {"description": "OK"}, "404": {"description": "No active units"}}}},
        "/equipment/{id}": {
            "get": {"tags": ["Equipment"], "summary": "Get equipment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Equipment"], "summary": "Update equipment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Equipment"], "summary": "Delete equipment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Equipment has reservations"}}}
        },
        "/equipment/{id}/status": {"put": {"tags": ["Equipment"], "summary": "Set equipment status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/curriculum": {"get": {"tags": ["Curriculum"], "summary": "Curriculum view", "responses": {"200": {"description": "OK"}}}},
        "/curriculum/export": {
            "get": {
                "tags": ["Curriculum"], "summary": "Export the curriculum view",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/curriculum/{subjectCode}/recommendations": {"get": {"tags": ["Curriculum"], "summary": "Equipment recommendations", "parameters": [{"name": "subjectCode", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/requests": {
            "get": {"tags": ["Requests"], "summary": "List reservations", "parameters": [{"name": "status", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/requests/calendar.ics": {"get": {"tags": ["Requests"], "summary": "Active reservations as iCalendar", "produces": ["text/calendar"], "responses": {"200": {"description": "File"}}}},
        "/requests/{id}/status": {"put": {"tags": ["Requests"], "summary": "Approve, reject, return or cancel", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Conflict with an active reservation"}}}}
    },
    "definitions": {
        "SubjectRequest": {
            "type": "object",
            "required": ["name", "code"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"},
                "grade_level": {"type": "string"},
                "room": {"type": "string"},
                "teacher_name": {"type": "string"},
                "equipment_fleets": {"type": "array", "items": {"type": "string"}}
            }
        },
        "EquipmentRequest": {
            "type": "object",
            "required": ["serial_number"],
            "properties": {
                "serial_number": {"type": "string"},
                "fleet_serial": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "checked_out", "under_repair", "retired"]},
                "location": {"type": "string"},
                "notes": {"type": "string"},
                "learning_impact_score": {"type": "number"}
            }
        },
        "RequestEquipmentRequest": {
            "type": "object",
            "required": ["equipment_ids", "start_date", "end_date"],
            "properties": {
                "equipment_ids": {"type": "array", "items": {"type": "string"}},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "notes": {"type": "string"}
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
