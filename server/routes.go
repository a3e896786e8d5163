package server

func (s *Server) initRoutes() {
	// OAuth handoff (browser-facing redirects, no CORS needed)
	s.RegisterRouteHandler("GET "+RouteOAuthStart, ChainMiddleware(s.OAuthStartHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.BrowserMiddleware()...))

	// Delegated proxy routes (embedded-app API, JSON)
	s.RegisterRouteHandler("GET "+RouteResources, ChainMiddleware(s.ListResourcesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteResourceID, ChainMiddleware(s.GetResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteResources, ChainMiddleware(s.CreateResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteResourceID, ChainMiddleware(s.UpdateResourceHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteIntegrationStatus, ChainMiddleware(s.IntegrationStatusHandler(), s.APIMiddleware()...))

	// Per-shop settings (connection state, workspace selection)
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.GetSettingsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteSettingsWorkspace, ChainMiddleware(s.SelectWorkspaceHandler(), s.APIMiddleware()...))
}
