// Package docs registers the OpenAPI description served under /api/swagger.
// It is regenerated with `swag init -g cmd/server/main.go`.
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
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Start a cookie session", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "End the session and revoke the bearer token", "responses": {"200": {"description": "OK"}}}},
        "/auth/token": {"post": {"tags": ["auth"], "summary": "Obtain a JWT pair", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/token/refresh": {"post": {"tags": ["auth"], "summary": "Exchange a refresh token for a new access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/token/verify": {"post": {"tags": ["auth"], "summary": "Check a token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/users": {
            "get": {"tags": ["users"], "summary": "List active users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/users/friends": {"get": {"security": [{"BearerAuth": []}], "tags": ["friends"], "summary": "Mutual follows of the caller", "responses": {"200": {"description": "OK"}}}},
        "/users/followers": {"get": {"security": [{"BearerAuth": []}], "tags": ["friends"], "summary": "Users following the caller", "responses": {"200": {"description": "OK"}}}},
        "/users/followed": {"get": {"security": [{"BearerAuth": []}], "tags": ["friends"], "summary": "Users the caller follows", "responses": {"200": {"description": "OK"}}}},
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update a profile", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Partially update a profile", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Deactivate an account", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/users/{id}/activity": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Last login and last request times", "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/add_friend": {"post": {"security": [{"BearerAuth": []}], "tags": ["friends"], "summary": "Follow a user", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/users/{id}/change_password": {"post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Change password", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/users/{id}/remove_friend": {"post": {"security": [{"BearerAuth": []}], "tags": ["friends"], "summary": "Unfollow a user", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/posts": {
            "get": {"tags": ["posts"], "summary": "List posts, newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Create a post", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/posts/analytics": {"get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Likes per day across all posts", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/posts/{id}": {
            "get": {"tags": ["posts"], "summary": "Get a post", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Replace a post", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Partially update a post", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Delete a post", "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/posts/{id}/analytics": {"get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Likes per day for one post", "responses": {"200": {"description": "OK"}}}},
        "/posts/{id}/like": {"post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Like a post", "responses": {"200": {"description": "OK"}}}},
        "/posts/{id}/unlike": {"post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Remove a like", "responses": {"200": {"description": "OK"}}}},
        "/admin/feature-flags": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Configured feature flags and their state for the caller", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Socialnet API",
	Description:      "Accounts, follow relationships, posts and likes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
