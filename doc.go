// Package backend provides the Left API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/feed: Home feed composition and engagement ranking
// - internal/moderation: Admin post moderation and pagination
// - internal/messaging: Direct message conversations
// - internal/notifications: Activity notifications
// - internal/realtime: WebSocket hub for live updates
// - internal/database: Database connection and migrations
// - internal/cache: Redis-backed caching
// - internal/middleware: HTTP middleware (request IDs, metrics, roles)

// See the individual package documentation for detailed API reference.
package backend
