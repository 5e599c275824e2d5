// Package api provides the HTTP API layer for the Web Clipper background.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request/response validation, and a clean handler interface.
//
// # Architecture
//
// The API package is structured as follows:
//
// - server.go: Huma API configuration and setup
// - handlers/: runtime messages, tab lifecycle, event streams and health
// - dto/: Data Transfer Objects for requests and responses
// - middleware/: request logging, feature flags and rate limiting
//
// # Endpoints
//
//	POST   /messages            runtime message from a content script (X-Tab-ID header)
//	PUT    /tabs/{id}           register a tab or report navigation
//	GET    /tabs/{id}           tab with its badge
//	DELETE /tabs/{id}           tab closed
//	POST   /tabs/{id}/activate  tab activated
//	POST   /tabs/{id}/toggle    toolbar button clicked
//	POST   /tabs/{id}/menu      context-menu entry clicked
//	GET    /tabs/{id}/events    server-sent pushes for a remote content script
//	GET    /health              liveness and feature flags
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:      logger,
//	    RateLimiter: middleware.NewRateLimiter(20, 40),
//	    Flags:       featureflags.NewEnvManager("", nil),
//	})
//
//	handlers.NewMessageHandler(background).RegisterRoutes(humaAPI)
//	handlers.NewTabHandler(registry, background).RegisterRoutes(humaAPI)
//
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 problem format. Validation errors map to 400,
// unknown tabs to 404, rejected text to 422, unreachable tabs or services
// to 502 and a stopped store to 503.
package api
