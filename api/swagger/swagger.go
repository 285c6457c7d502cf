package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement API",
        "description": "Drive requests, calendar approvals and offer publication over placement workbooks",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Associate login"},
        {"name": "Drives", "description": "Drive requests and slot approvals"},
        {"name": "Results", "description": "Result publication and export"},
        {"name": "Companies", "description": "Company to SPOC map"},
        {"name": "Placements", "description": "Calendar and academic year"},
        {"name": "Enrollment", "description": "Student list uploads"},
        {"name": "Analytics", "description": "Branch placement statistics"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate associate",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drives/request": {
            "post": {
                "tags": ["Drives"],
                "summary": "Create or update a drive request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DriveRequestPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owning SPOC", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drives/pending": {
            "get": {
                "tags": ["Drives"],
                "summary": "Slots awaiting a calendar decision",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/drives/approve": {
            "post": {
                "tags": ["Drives"],
                "summary": "Approve, reject or suggest a new time for a slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drives/my": {
            "get": {
                "tags": ["Drives"],
                "summary": "Drives visible to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/drives/completed": {
            "get": {
                "tags": ["Drives"],
                "summary": "Drives whose scheduled slots are all approved",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/drives/status": {
            "post": {
                "tags": ["Drives"],
                "summary": "Overwrite the drive status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetDriveStatusRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/drives/results": {
            "post": {
                "tags": ["Results"],
                "summary": "Publish the selected roll numbers of a drive",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishResultsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Publication summary", "schema": {"$ref": "#/definitions/PublishResultsResponse"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drives/results/{request_id}": {
            "get": {
                "tags": ["Results"],
                "summary": "Current selection of a drive",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "request_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/drives/results/{request_id}/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download the current selection",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "request_id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "404": {"description": "No results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/companies/my": {
            "get": {
                "tags": ["Companies"],
                "summary": "Companies assigned to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/companies/assign": {
            "post": {
                "tags": ["Companies"],
                "summary": "Assign a company to a SPOC",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignCompanyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/spocs": {
            "get": {
                "tags": ["Companies"],
                "summary": "Search associates who can act as SPOC",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "q", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/placements/calendar": {
            "get": {
                "tags": ["Placements"],
                "summary": "Approved drives in the calendar",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/academic-year": {
            "get": {
                "tags": ["Placements"],
                "summary": "Active academic year",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Placements"],
                "summary": "Change the academic year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAcademicYearRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/enroll/students": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Enroll students from an xlsx sheet",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "degreeType", "in": "formData", "required": true, "type": "string", "enum": ["UG", "PG"]},
                    {"name": "branch", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid upload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/branch/{degree}/{branch}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Statistics of one branch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "degree", "in": "path", "required": true, "type": "string"},
                    {"name": "branch", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/branchwise/{degree}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Statistics of every branch of a degree",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "degree", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/overall": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Placement overview across degrees",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/recalculate": {
            "post": {
                "tags": ["Analytics"],
                "summary": "Rewrite the stats sheets of a branch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateStatsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "DriveRequestPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "company": {"type": "string"},
                "type": {"type": "string"},
                "eligible_pool": {"type": "string"},
                "cgpa_cutoff": {"type": "string"},
                "ppt_datetime": {"type": "string"},
                "ot_datetime": {"type": "string"},
                "interview_datetime": {"type": "string"},
                "internship_stipend": {"type": "string"},
                "fte_ctc": {"type": "string"},
                "fte_base": {"type": "string"},
                "expected_hires": {"type": "string"}
            }
        },
        "ApproveSlotRequest": {
            "type": "object",
            "required": ["request_id", "slot", "action"],
            "properties": {
                "request_id": {"type": "string"},
                "slot": {"type": "string", "enum": ["PPT", "OT", "INTERVIEW"]},
                "action": {"type": "string", "enum": ["APPROVE", "REJECT", "SUGGEST"]},
                "suggested_datetime": {"type": "string"}
            }
        },
        "SetDriveStatusRequest": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "PublishResultsRequest": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "results": {"type": "string", "description": "Comma separated roll numbers"}
            }
        },
        "PublishResultsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "company": {"type": "string"},
                "selected": {"type": "integer", "description": "Distinct roll numbers submitted"},
                "added": {"type": "integer", "description": "Offers applied for newly selected rolls"},
                "removed": {"type": "integer", "description": "Offers revoked for deselected rolls"},
                "addedRolls": {"type": "array", "items": {"type": "string"}},
                "removedRolls": {"type": "array", "items": {"type": "string"}},
                "failedAdds": {"type": "array", "items": {"type": "string"}},
                "failedRemoves": {"type": "array", "items": {"type": "string"}},
                "partialAdds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "AssignCompanyRequest": {
            "type": "object",
            "required": ["company", "spoc_email"],
            "properties": {
                "company": {"type": "string"},
                "spoc_email": {"type": "string"}
            }
        },
        "SetAcademicYearRequest": {
            "type": "object",
            "required": ["academicYear"],
            "properties": {
                "academicYear": {"type": "string"}
            }
        },
        "RecalculateStatsRequest": {
            "type": "object",
            "required": ["degreeType", "branch"],
            "properties": {
                "degreeType": {"type": "string", "enum": ["UG", "PG"]},
                "branch": {"type": "string"}
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
