// Package docs spacedash HTTP 接口的 Swagger 文档，与 handle 包中的注解保持一致.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/license/mit/"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["用量"],
                "summary": "用量仪表盘",
                "parameters": [
                    {"type": "string", "description": "用户邮箱", "name": "X-User", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Dashboard"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/usage/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["用量"],
                "summary": "分类汇总",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SummaryResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/usage/totals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["用量"],
                "summary": "用量总计",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Totals"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/usage/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["用量"],
                "summary": "用量历史",
                "parameters": [
                    {"type": "integer", "description": "天数，1-365", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/usage/snapshot": {
            "post": {
                "produces": ["application/json"],
                "tags": ["用量"],
                "summary": "记录用量快照",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HistoryPoint"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/files": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "登记文件",
                "parameters": [
                    {"description": "文件元数据", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterFileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.RecentFile"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/files/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "最近文件",
                "parameters": [
                    {"type": "integer", "description": "数量，1-100，默认 usage.recent_limit", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RecentFilesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/files/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "删除文件",
                "parameters": [
                    {"type": "string", "description": "文件 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/quota": {
            "get": {
                "produces": ["application/json"],
                "tags": ["配额"],
                "summary": "查询配额",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.QuotaResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["配额"],
                "summary": "设置配额",
                "parameters": [
                    {"description": "配额", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SetQuotaRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.QuotaResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/health/db": {
            "get": {
                "produces": ["application/json"],
                "tags": ["健康检查"],
                "summary": "文件元数据库健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/health/s3": {
            "get": {
                "produces": ["application/json"],
                "tags": ["健康检查"],
                "summary": "对象存储健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/health/mq": {
            "get": {
                "produces": ["application/json"],
                "tags": ["健康检查"],
                "summary": "消息队列健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/health/kv": {
            "get": {
                "produces": ["application/json"],
                "tags": ["健康检查"],
                "summary": "缓存健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/scheduler/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["调度器"],
                "summary": "任务列表",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"jobs": {"type": "array", "items": {"$ref": "#/definitions/scheduler.JobInfo"}}}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/scheduler/jobs/{job}/run": {
            "post": {
                "produces": ["application/json"],
                "tags": ["调度器"],
                "summary": "立即执行任务",
                "parameters": [
                    {"type": "string", "description": "任务名或任务 ID", "name": "job", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "scheduler.JobInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "cron_expr": {"type": "string"},
                "status": {"type": "string"},
                "runs": {"type": "integer"},
                "next_run": {"type": "string"},
                "last_run": {"type": "string"},
                "last_success": {"type": "string"},
                "last_duration": {"type": "integer"},
                "error": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "types.Dashboard": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "summary": {"type": "array", "items": {"$ref": "#/definitions/types.SummaryCard"}},
                "totals": {"$ref": "#/definitions/types.Totals"},
                "recent": {"type": "array", "items": {"$ref": "#/definitions/types.RecentFile"}},
                "generated_at": {"type": "string"}
            }
        },
        "types.SummaryCard": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "total_size": {"type": "integer"},
                "size": {"type": "string"},
                "count": {"type": "integer"},
                "latest_at": {"type": "string"}
            }
        },
        "types.Totals": {
            "type": "object",
            "properties": {
                "used": {"type": "integer"},
                "quota": {"type": "integer"},
                "available": {"type": "integer"},
                "used_fraction": {"type": "number"},
                "used_percent": {"type": "integer"},
                "used_text": {"type": "string"},
                "quota_text": {"type": "string"},
                "available_text": {"type": "string"},
                "over_quota": {"type": "boolean"}
            }
        },
        "types.RecentFile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "extension": {"type": "string"},
                "size": {"type": "integer"},
                "size_text": {"type": "string"},
                "url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "types.RecentFilesResponse": {
            "type": "object",
            "properties": {
                "files": {"type": "array", "items": {"$ref": "#/definitions/types.RecentFile"}},
                "count": {"type": "integer"}
            }
        },
        "types.RegisterFileRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 1024},
                "size": {"type": "integer", "minimum": 0},
                "content_type": {"type": "string", "maxLength": 255},
                "category": {"type": "string", "enum": ["document", "image", "media", "other"]},
                "url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "types.SummaryResponse": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "summary": {"type": "array", "items": {"$ref": "#/definitions/types.SummaryCard"}}
            }
        },
        "types.HistoryPoint": {
            "type": "object",
            "properties": {
                "at": {"type": "string"},
                "used": {"type": "integer"},
                "quota": {"type": "integer"},
                "file_count": {"type": "integer"},
                "categories": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "types.HistoryResponse": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "days": {"type": "integer"},
                "points": {"type": "array", "items": {"$ref": "#/definitions/types.HistoryPoint"}}
            }
        },
        "types.SetQuotaRequest": {
            "type": "object",
            "required": ["size"],
            "properties": {
                "size": {"type": "string", "example": "5 GB"}
            }
        },
        "types.QuotaResponse": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "bytes": {"type": "integer"},
                "text": {"type": "string"},
                "default": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo 文档元信息，Host 与 Version 在注册路由时按配置覆盖.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "spacedash API",
	Description:      "spacedash 统计用户存储用量：按文件类型汇总、配额占比与最近上传文件。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
