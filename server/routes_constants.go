package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth delegation routes
	RouteOAuthStart    = "/oauth/start"
	RouteOAuthCallback = "/oauth/callback"

	// Delegated resource routes (chat agents, proxied to the upstream)
	RouteResources  = "/resources"
	RouteResourceID = "/resources/{id}"

	// Delegated integration status route
	RouteIntegrationStatus = "/integrations/{provider}/status"

	// Per-shop settings routes
	RouteSettings          = "/settings"
	RouteSettingsWorkspace = "/settings/workspace"
)

// Upstream path suffixes the delegated routes forward to.
const (
	upstreamResourceListPath   = "/api/chatbot/all/oAuth"
	upstreamResourceGetPath    = "/api/chatbot/%s"
	upstreamResourceCreatePath = "/api/chatbot/oAuth/create"
	upstreamResourceUpdatePath = "/api/chatbot/update/%s"
)
