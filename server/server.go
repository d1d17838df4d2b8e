package server

import (
	"fmt"
	"net/http"
	"strings"

	stdlog "log"

	"github.com/tangerineshop/shop-server/catalog"
	"github.com/tangerineshop/shop-server/internal/config"
	"github.com/tangerineshop/shop-server/orders"
	"github.com/tangerineshop/shop-server/server/flowstate"
	"github.com/tangerineshop/shop-server/session"
	"github.com/tangerineshop/shop-server/token"
	"github.com/tangerineshop/shop-server/users"
)

// Deps bundles everything the HTTP layer needs. Kakao may be nil, which
// leaves the social login routes unregistered.
type Deps struct {
	Codec    *token.Codec
	Sessions *session.Manager
	Users    users.Repo
	Catalog  catalog.Repo
	Orders   *orders.Service
	Kakao    *KakaoAuthenticator
}

type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config

	codec     *token.Codec
	sessions  *session.Manager
	users     users.Repo
	catalog   catalog.Repo
	orders    *orders.Service
	kakao     *KakaoAuthenticator
	authState flowstate.Repo
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	if deps.Codec == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("[Server New] token codec and session manager are required")
	}
	if deps.Users == nil || deps.Catalog == nil || deps.Orders == nil {
		return nil, fmt.Errorf("[Server New] user, catalog, and order dependencies are required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		codec:     deps.Codec,
		sessions:  deps.Sessions,
		users:     deps.Users,
		catalog:   deps.Catalog,
		orders:    deps.Orders,
		kakao:     deps.Kakao,
		authState: flowstate.NewInMemoryRepo(),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
	stdlog.Printf("[%-19s] %s\n", displayMethod, path)
}
