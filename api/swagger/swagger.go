package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Section Portal API",
        "description": "Multi-tenant record store for academic sections",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login endpoints for the three roles"},
        {"name": "Directory", "description": "Course, year and section tree"},
        {"name": "Students", "description": "Section roster management"},
        {"name": "Admins", "description": "Secondary admin management"},
        {"name": "Attendance", "description": "Counted attendance ledger"},
        {"name": "Activities", "description": "Extracurricular activities"},
        {"name": "Issues", "description": "Attendance disputes"},
        {"name": "Notes", "description": "Course material by subject"},
        {"name": "Certificates", "description": "Per-student documents"},
        {"name": "Scrutiny", "description": "Student document verification"},
        {"name": "Chat", "description": "Groups and 1:1 threads"},
        {"name": "Me", "description": "Student self-service"},
        {"name": "Reports", "description": "PDF exports"}
    ],
    "paths": {
        "/auth/admin/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Main admin login",
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/teacher/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Secondary admin login",
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/student/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Student login",
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/courses": {
            "get": {"tags": ["Directory"], "summary": "List courses", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Directory"], "summary": "Create course", "responses": {"201": {"description": "Created"}, "409": {"description": "Exists"}}}
        },
        "/courses/{course}/years": {
            "get": {"tags": ["Directory"], "summary": "List years", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Directory"], "summary": "Create year", "responses": {"201": {"description": "Created"}}}
        },
        "/courses/{course}/years/{year}/sections": {
            "get": {"tags": ["Directory"], "summary": "List sections", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Directory"], "summary": "Create section with empty collections", "responses": {"201": {"description": "Created"}}}
        },
        "/courses/{course}/years/{year}/sections/{section}/students": {
            "get": {"tags": ["Students"], "summary": "List roster", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Students"], "summary": "Register student", "responses": {"201": {"description": "Created"}}}
        },
        "/courses/{course}/years/{year}/sections/{section}/attendance": {
            "get": {"tags": ["Attendance"], "summary": "Get ledger", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Attendance"], "summary": "Apply record writes", "responses": {"200": {"description": "OK"}}}
        },
        "/courses/{course}/years/{year}/sections/{section}/chat/groups": {
            "get": {"tags": ["Chat"], "summary": "List groups", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Chat"], "summary": "Create group", "responses": {"201": {"description": "Created"}}}
        },
        "/courses/{course}/years/{year}/sections/{section}/reports/attendance": {
            "get": {"tags": ["Reports"], "summary": "Attendance register PDF", "responses": {"200": {"description": "PDF"}}}
        },
        "/me/attendance": {
            "get": {"tags": ["Me"], "summary": "Own attendance expanded per subject", "responses": {"200": {"description": "OK"}}}
        },
        "/me/issues": {
            "get": {"tags": ["Me"], "summary": "Own disputes", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Issues"], "summary": "Raise dispute", "responses": {"201": {"description": "Created"}}}
        }
    },
    "definitions": {
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
