// Package api is the HTTP client for the hypewriter project backend.
//
// Endpoints:
//
//	GET    /api/projects               list projects
//	POST   /api/projects/{id}/activate activate a project
//	POST   /api/projects               create a project
//	DELETE /api/projects/{id}          delete a project
//	POST   /api/import/novel           import a manuscript
//
// Non-2xx responses are returned as *StatusError.
package api
