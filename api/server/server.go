// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64

	// MetricsEndpoint serves the Prometheus exposition format.
	MetricsEndpoint = "metrics"
)

var errRouteExists = errors.New("route already exists")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server routes /ext/<base> to registered handlers.
type Server struct {
	log             log.Logger
	shutdownTimeout time.Duration
	metrics         *metrics
	router          *mux.Router
	routes          map[string]struct{}
	srv             *http.Server
	listener        net.Listener
}

// New returns a server that will serve on [listener] once dispatched.
func New(
	logger log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer metric.Registerer,
	httpConfig HTTPConfig,
) (*Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	logger.Info("API created",
		log.String("allowedOrigins", strings.Join(allowedOrigins, ",")),
	)

	return &Server{
		log:             logger,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          router,
		routes:          make(map[string]struct{}),
		srv: &http.Server{
			Handler: h2c.NewHandler(
				handler,
				&http2.Server{
					MaxConcurrentStreams: maxConcurrentStreams,
				},
			),
			ReadTimeout:       httpConfig.ReadTimeout,
			ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
			WriteTimeout:      httpConfig.WriteTimeout,
			IdleTimeout:       httpConfig.IdleTimeout,
		},
		listener: listener,
	}, nil
}

// AddRoute serves [handler] at /ext/[base][endpoint].
func (s *Server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := fmt.Sprintf("%s/%s%s", baseURL, base, endpoint)
	if _, ok := s.routes[url]; ok {
		return fmt.Errorf("%w: %s", errRouteExists, url)
	}
	s.routes[url] = struct{}{}

	s.log.Info("adding route",
		log.UserString("url", url),
	)
	s.router.Handle(url, s.metrics.wrapHandler(base, handler))
	return nil
}

// AddMetricsRoute serves [gatherer] at /ext/metrics.
func (s *Server) AddMetricsRoute(gatherer prometheus.Gatherer) error {
	return s.AddRoute(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), MetricsEndpoint, "")
}

// Handler returns the root handler, for serving without a listener.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Dispatch serves until Shutdown is called.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
