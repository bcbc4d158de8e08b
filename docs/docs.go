// Package docs registers the swagger description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/api/v1/groups": {"get": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "可见分组", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/feed": {"get": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "动态列表（增量分页）", "parameters": [
            {"type": "string", "description": "分组ID", "name": "group", "in": "query"},
            {"type": "integer", "default": 10, "description": "每页数量", "name": "limit", "in": "query"},
            {"type": "integer", "default": 0, "description": "偏移量", "name": "offset", "in": "query"}
        ], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/posts": {"post": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "发布动态（通知异步发送）", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/posts/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "修改动态", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "删除动态", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/posts/{id}/comments": {"post": {"security": [{"BearerAuth": []}], "tags": ["评论"], "summary": "发表评论", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/api/v1/posts/{id}/like": {"post": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "切换点赞", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/posts/{id}/responses": {"post": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "提交投票/表单", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/comments/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["评论"], "summary": "修改评论", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["评论"], "summary": "删除评论", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/users/search": {"get": {"security": [{"BearerAuth": []}], "tags": ["动态"], "summary": "按前缀搜索用户", "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/account/push-subscriptions": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["账户"], "summary": "添加推送订阅", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["账户"], "summary": "删除推送订阅", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/account/notifications": {"put": {"security": [{"BearerAuth": []}], "tags": ["账户"], "summary": "通知设置", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/groups": {"post": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "新建分组", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/api/v1/admin/groups/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "修改分组", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "删除分组", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/groups/{id}/members": {"get": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "分组成员", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/groups/{id}/members/{user_id}": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "添加成员", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "user_id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "移除成员", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "user_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/notifications/test": {"post": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "测试通知", "responses": {"200": {"description": "OK"}}}},
        "/healthz": {"get": {"tags": ["系统"], "summary": "健康检查", "responses": {"200": {"description": "OK"}}}}
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
	Title:            "Groupfeed API",
	Description:      "Group-scoped feed with push and email notification fan-out.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
