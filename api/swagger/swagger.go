package swagger

import "github.com/swaggo/swag"

// Routes outside the API prefix (/health, /ready, /metrics) are listed relative to basePath
// for discovery only.
const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Matricula API",
    "description": "University enrollment backend: sections, schedules, enrollments and payments.",
    "version": "1.0.0"
  },
  "basePath": "/api/v1",
  "schemes": [
    "http",
    "https"
  ],
  "securityDefinitions": {
    "BearerAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header"
    }
  },
  "tags": [
    {
      "name": "Enrollments"
    },
    {
      "name": "EnrollmentLines"
    },
    {
      "name": "Payments"
    },
    {
      "name": "Sections"
    },
    {
      "name": "Schedules"
    },
    {
      "name": "Periods"
    },
    {
      "name": "Prerequisites"
    },
    {
      "name": "Settings"
    },
    {
      "name": "Reports"
    }
  ],
  "paths": {
    "/health": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/ready": {
      "get": {
        "summary": "Readiness check",
        "responses": {
          "200": {
            "description": "Ready"
          },
          "503": {
            "description": "Dependency unavailable"
          }
        }
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "produces": [
          "text/plain"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/enrollments": {
      "get": {
        "tags": [
          "Enrollments"
        ],
        "summary": "List enrollments",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "studentId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "periodId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "status",
            "in": "query",
            "type": "string"
          },
          {
            "name": "type",
            "in": "query",
            "type": "string"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "Enrollments"
        ],
        "summary": "Enroll a student in a period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreateEnrollmentRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/period/{periodId}": {
      "get": {
        "tags": [
          "Enrollments"
        ],
        "summary": "List enrollments of a period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "periodId",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "status",
            "in": "query",
            "type": "string"
          },
          {
            "name": "type",
            "in": "query",
            "type": "string"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}": {
      "get": {
        "tags": [
          "Enrollments"
        ],
        "summary": "Get enrollment with lines",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/status": {
      "patch": {
        "tags": [
          "Enrollments"
        ],
        "summary": "Set enrollment status",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/UpdateEnrollmentStatusRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/cancel": {
      "patch": {
        "tags": [
          "Enrollments"
        ],
        "summary": "Cancel enrollment and release its seats",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/lines": {
      "get": {
        "tags": [
          "Enrollments"
        ],
        "summary": "List lines of an enrollment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/history": {
      "get": {
        "tags": [
          "Enrollments"
        ],
        "summary": "Audit history of an enrollment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/balance": {
      "get": {
        "tags": [
          "Payments"
        ],
        "summary": "Outstanding balance of an enrollment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/payments": {
      "get": {
        "tags": [
          "Payments"
        ],
        "summary": "Payments of an enrollment with its balance",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollments/{id}/certificate.pdf": {
      "get": {
        "tags": [
          "Reports"
        ],
        "summary": "Enrollment certificate",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "File",
            "schema": {
              "type": "file"
            }
          }
        },
        "produces": [
          "application/pdf"
        ]
      }
    },
    "/enrollments/{id}/timetable.ics": {
      "get": {
        "tags": [
          "Reports"
        ],
        "summary": "Weekly timetable as iCalendar",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "File",
            "schema": {
              "type": "file"
            }
          }
        },
        "produces": [
          "text/calendar"
        ]
      }
    },
    "/enrollment-lines": {
      "get": {
        "tags": [
          "EnrollmentLines"
        ],
        "summary": "List enrollment lines",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "enrollmentId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "sectionId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "status",
            "in": "query",
            "type": "string"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "EnrollmentLines"
        ],
        "summary": "Add a section to an enrollment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/AddEnrollmentLineRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollment-lines/{id}": {
      "get": {
        "tags": [
          "EnrollmentLines"
        ],
        "summary": "Get an enrollment line",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/enrollment-lines/{id}/withdraw": {
      "patch": {
        "tags": [
          "EnrollmentLines"
        ],
        "summary": "Withdraw a section",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/payments": {
      "get": {
        "tags": [
          "Payments"
        ],
        "summary": "List payments",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "enrollmentId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "status",
            "in": "query",
            "type": "string"
          },
          {
            "name": "method",
            "in": "query",
            "type": "string"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "Payments"
        ],
        "summary": "Record a payment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/RecordPaymentRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/payments/{id}": {
      "get": {
        "tags": [
          "Payments"
        ],
        "summary": "Get payment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/payments/{id}/cancel": {
      "patch": {
        "tags": [
          "Payments"
        ],
        "summary": "Cancel a payment",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/sections": {
      "get": {
        "tags": [
          "Sections"
        ],
        "summary": "List sections",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "courseId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "periodId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "teacherId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "active",
            "in": "query",
            "type": "boolean"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "Sections"
        ],
        "summary": "Create section",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreateSectionRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/sections/course/{courseId}/period/{periodId}": {
      "get": {
        "tags": [
          "Sections"
        ],
        "summary": "Sections offered for a course in a period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "courseId",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "periodId",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/sections/{id}": {
      "get": {
        "tags": [
          "Sections"
        ],
        "summary": "Get section",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "put": {
        "tags": [
          "Sections"
        ],
        "summary": "Update section",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/UpdateSectionRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "delete": {
        "tags": [
          "Sections"
        ],
        "summary": "Delete section",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "204": {
            "description": "No Content"
          }
        }
      }
    },
    "/schedules": {
      "get": {
        "tags": [
          "Schedules"
        ],
        "summary": "List schedules",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "sectionId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "teacherId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "periodId",
            "in": "query",
            "type": "string"
          },
          {
            "name": "dayOfWeek",
            "in": "query",
            "type": "string"
          },
          {
            "name": "room",
            "in": "query",
            "type": "string"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "Schedules"
        ],
        "summary": "Create schedule block",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreateScheduleRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/schedules/teacher/{teacherId}": {
      "get": {
        "tags": [
          "Schedules"
        ],
        "summary": "List schedules by teacher",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "teacherId",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "periodId",
            "in": "query",
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/schedules/check-conflicts": {
      "post": {
        "tags": [
          "Schedules"
        ],
        "summary": "Check teacher and room conflicts",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CheckConflictsRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/schedules/{id}": {
      "get": {
        "tags": [
          "Schedules"
        ],
        "summary": "Get schedule",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "put": {
        "tags": [
          "Schedules"
        ],
        "summary": "Update schedule block",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/UpdateScheduleRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "delete": {
        "tags": [
          "Schedules"
        ],
        "summary": "Delete schedule block",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "204": {
            "description": "No Content"
          }
        }
      }
    },
    "/periods": {
      "get": {
        "tags": [
          "Periods"
        ],
        "summary": "List academic periods",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "status",
            "in": "query",
            "type": "string"
          },
          {
            "name": "active",
            "in": "query",
            "type": "boolean"
          },
          {
            "name": "page",
            "in": "query",
            "type": "integer"
          },
          {
            "name": "limit",
            "in": "query",
            "type": "integer"
          }
        ]
      },
      "post": {
        "tags": [
          "Periods"
        ],
        "summary": "Create academic period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreatePeriodRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/periods/current": {
      "get": {
        "tags": [
          "Periods"
        ],
        "summary": "Active academic period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/periods/{id}": {
      "get": {
        "tags": [
          "Periods"
        ],
        "summary": "Get academic period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/periods/{id}/status": {
      "patch": {
        "tags": [
          "Periods"
        ],
        "summary": "Change period status",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/UpdatePeriodStatusRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/prerequisites": {
      "post": {
        "tags": [
          "Prerequisites"
        ],
        "summary": "Declare a prerequisite",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreatePrerequisiteRequest"
            }
          }
        ],
        "responses": {
          "201": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/prerequisites/course/{courseId}": {
      "get": {
        "tags": [
          "Prerequisites"
        ],
        "summary": "Prerequisites of a course",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "courseId",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/settings": {
      "get": {
        "tags": [
          "Settings"
        ],
        "summary": "List settings",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "put": {
        "tags": [
          "Settings"
        ],
        "summary": "Bulk update settings",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/BulkUpdateConfigurationRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/settings/{key}": {
      "get": {
        "tags": [
          "Settings"
        ],
        "summary": "Get setting",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "key",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      },
      "put": {
        "tags": [
          "Settings"
        ],
        "summary": "Update setting",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "key",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/UpdateConfigurationRequest"
            }
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/reports/periods/{periodId}": {
      "get": {
        "tags": [
          "Reports"
        ],
        "summary": "Enrollment statistics of a period",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "periodId",
            "in": "path",
            "required": true,
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        }
      }
    },
    "/reports/periods/{periodId}/export": {
      "get": {
        "tags": [
          "Reports"
        ],
        "summary": "Export period statistics",
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "periodId",
            "in": "path",
            "required": true,
            "type": "string"
          },
          {
            "name": "format",
            "in": "query",
            "type": "string"
          }
        ],
        "responses": {
          "200": {
            "description": "File",
            "schema": {
              "type": "file"
            }
          }
        },
        "produces": [
          "application/octet-stream"
        ]
      }
    }
  },
  "definitions": {
    "CreateEnrollmentRequest": {
      "type": "object",
      "required": [
        "student_id",
        "period_id",
        "type"
      ],
      "properties": {
        "student_id": {
          "type": "string",
          "format": "uuid"
        },
        "period_id": {
          "type": "string",
          "format": "uuid"
        },
        "type": {
          "type": "string",
          "enum": [
            "regular",
            "late"
          ]
        },
        "section_ids": {
          "type": "array",
          "items": {
            "type": "string",
            "format": "uuid"
          }
        }
      }
    },
    "UpdateEnrollmentStatusRequest": {
      "type": "object",
      "required": [
        "status"
      ],
      "properties": {
        "status": {
          "type": "string",
          "enum": [
            "pending",
            "paid",
            "cancelled"
          ]
        }
      }
    },
    "AddEnrollmentLineRequest": {
      "type": "object",
      "required": [
        "enrollment_id",
        "section_id"
      ],
      "properties": {
        "enrollment_id": {
          "type": "string",
          "format": "uuid"
        },
        "section_id": {
          "type": "string",
          "format": "uuid"
        }
      }
    },
    "RecordPaymentRequest": {
      "type": "object",
      "required": [
        "enrollment_id",
        "amount",
        "method"
      ],
      "properties": {
        "enrollment_id": {
          "type": "string",
          "format": "uuid"
        },
        "amount": {
          "type": "string",
          "example": "250.00"
        },
        "method": {
          "type": "string",
          "enum": [
            "cash",
            "card",
            "transfer",
            "other"
          ]
        },
        "reference": {
          "type": "string"
        }
      }
    },
    "CreateSectionRequest": {
      "type": "object",
      "required": [
        "course_id",
        "period_id",
        "teacher_id",
        "label",
        "max_capacity"
      ],
      "properties": {
        "course_id": {
          "type": "string",
          "format": "uuid"
        },
        "period_id": {
          "type": "string",
          "format": "uuid"
        },
        "teacher_id": {
          "type": "string",
          "format": "uuid"
        },
        "label": {
          "type": "string"
        },
        "max_capacity": {
          "type": "integer"
        }
      }
    },
    "UpdateSectionRequest": {
      "type": "object",
      "required": [],
      "properties": {
        "teacher_id": {
          "type": "string",
          "format": "uuid"
        },
        "label": {
          "type": "string"
        },
        "max_capacity": {
          "type": "integer"
        },
        "active": {
          "type": "boolean"
        }
      }
    },
    "CreateScheduleRequest": {
      "type": "object",
      "required": [
        "section_id",
        "day_of_week",
        "start_time",
        "end_time",
        "room"
      ],
      "properties": {
        "section_id": {
          "type": "string",
          "format": "uuid"
        },
        "day_of_week": {
          "type": "string",
          "enum": [
            "monday",
            "tuesday",
            "wednesday",
            "thursday",
            "friday",
            "saturday",
            "sunday"
          ]
        },
        "start_time": {
          "type": "string",
          "example": "08:00"
        },
        "end_time": {
          "type": "string",
          "example": "10:00"
        },
        "room": {
          "type": "string"
        },
        "type": {
          "type": "string",
          "enum": [
            "theory",
            "practice",
            "lab"
          ]
        }
      }
    },
    "UpdateScheduleRequest": {
      "type": "object",
      "required": [
        "day_of_week",
        "start_time",
        "end_time",
        "room"
      ],
      "properties": {
        "day_of_week": {
          "type": "string",
          "enum": [
            "monday",
            "tuesday",
            "wednesday",
            "thursday",
            "friday",
            "saturday",
            "sunday"
          ]
        },
        "start_time": {
          "type": "string"
        },
        "end_time": {
          "type": "string"
        },
        "room": {
          "type": "string"
        },
        "type": {
          "type": "string",
          "enum": [
            "theory",
            "practice",
            "lab"
          ]
        }
      }
    },
    "CheckConflictsRequest": {
      "type": "object",
      "required": [
        "section_id",
        "day_of_week",
        "start_time",
        "end_time"
      ],
      "properties": {
        "section_id": {
          "type": "string",
          "format": "uuid"
        },
        "day_of_week": {
          "type": "string",
          "enum": [
            "monday",
            "tuesday",
            "wednesday",
            "thursday",
            "friday",
            "saturday",
            "sunday"
          ]
        },
        "start_time": {
          "type": "string"
        },
        "end_time": {
          "type": "string"
        },
        "room": {
          "type": "string"
        },
        "exclude_schedule_id": {
          "type": "string",
          "format": "uuid"
        }
      }
    },
    "CreatePeriodRequest": {
      "type": "object",
      "required": [
        "code",
        "name",
        "start_date",
        "end_date",
        "enrollment_start",
        "enrollment_end"
      ],
      "properties": {
        "code": {
          "type": "string"
        },
        "name": {
          "type": "string"
        },
        "start_date": {
          "type": "string",
          "format": "date"
        },
        "end_date": {
          "type": "string",
          "format": "date"
        },
        "enrollment_start": {
          "type": "string",
          "format": "date"
        },
        "enrollment_end": {
          "type": "string",
          "format": "date"
        },
        "late_enrollment_start": {
          "type": "string",
          "format": "date"
        },
        "late_enrollment_end": {
          "type": "string",
          "format": "date"
        }
      }
    },
    "UpdatePeriodStatusRequest": {
      "type": "object",
      "required": [
        "status"
      ],
      "properties": {
        "status": {
          "type": "string",
          "enum": [
            "scheduled",
            "in_progress",
            "finished"
          ]
        }
      }
    },
    "CreatePrerequisiteRequest": {
      "type": "object",
      "required": [
        "course_id",
        "required_course_id"
      ],
      "properties": {
        "course_id": {
          "type": "string",
          "format": "uuid"
        },
        "required_course_id": {
          "type": "string",
          "format": "uuid"
        },
        "type": {
          "type": "string",
          "enum": [
            "mandatory",
            "optional"
          ]
        }
      }
    },
    "UpdateConfigurationRequest": {
      "type": "object",
      "required": [
        "value"
      ],
      "properties": {
        "value": {
          "type": "string"
        }
      }
    },
    "BulkUpdateConfigurationRequest": {
      "type": "object",
      "required": [
        "items"
      ],
      "properties": {
        "items": {
          "type": "array",
          "items": {
            "type": "object",
            "required": [
              "key",
              "value"
            ],
            "properties": {
              "key": {
                "type": "string"
              },
              "value": {
                "type": "string"
              }
            }
          }
        }
      }
    },
    "Pagination": {
      "type": "object",
      "properties": {
        "page": {
          "type": "integer"
        },
        "page_size": {
          "type": "integer"
        },
        "total_count": {
          "type": "integer"
        }
      }
    },
    "APIError": {
      "type": "object",
      "properties": {
        "code": {
          "type": "string"
        },
        "message": {
          "type": "string"
        },
        "status": {
          "type": "integer"
        },
        "details": {
          "type": "object"
        }
      }
    },
    "ResponseEnvelope": {
      "type": "object",
      "properties": {
        "success": {
          "type": "boolean"
        },
        "message": {
          "type": "string"
        },
        "data": {
          "type": "object"
        },
        "error": {
          "$ref": "#/definitions/APIError"
        },
        "pagination": {
          "$ref": "#/definitions/Pagination"
        },
        "meta": {
          "type": "object"
        }
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
