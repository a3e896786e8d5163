package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/centralhq/shopify-relay/internal/config"
	"github.com/centralhq/shopify-relay/proxy"
	"github.com/centralhq/shopify-relay/statetoken"
	"github.com/centralhq/shopify-relay/statetoken/noncestore"
	"github.com/centralhq/shopify-relay/tenants"
	"github.com/centralhq/shopify-relay/token"
	"github.com/centralhq/shopify-relay/token/refresh"
	"github.com/centralhq/shopify-relay/upstream"
)

// Repos holds all repository dependencies for the Server.
type Repos struct {
	Tenants tenants.Repo
	Tokens  token.Repo
	Nonces  noncestore.Repo
}

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	repos     Repos
	codec     *statetoken.Codec
	upstream  *upstream.Client
	forwarder *proxy.Forwarder
	oauthCfg  *oauth2.Config
}

func New(cfg config.Config, repos Repos) (*Server, error) {
	if repos.Tenants == nil || repos.Tokens == nil || repos.Nonces == nil {
		return nil, fmt.Errorf("[Server New] tenants, tokens and nonces repos are required")
	}

	codec, err := statetoken.NewCodec(cfg.GetStateSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create state codec: %w", err)
	}

	upstreamClient, err := upstream.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create upstream client: %w", err)
	}

	refresher, err := refresh.NewRefresher(repos.Tokens, upstreamClient, cfg.GetDefaultRefreshTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create refresher: %w", err)
	}

	forwarder, err := proxy.NewForwarder(repos.Tenants, repos.Tokens, refresher, cfg.GetClientID(), cfg.GetRequestTimeout())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create forwarder: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		codec:     codec,
		upstream:  upstreamClient,
		forwarder: forwarder,
		oauthCfg: &oauth2.Config{
			ClientID:    cfg.GetClientID(),
			RedirectURL: cfg.GetRedirectURI(),
			Scopes:      []string{cfg.GetScope()},
			Endpoint:    oauth2.Endpoint{AuthURL: cfg.GetConnectURL()},
		},
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
