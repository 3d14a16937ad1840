package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"
)

func (s *Server) ingestMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/build", s.buildHandlers.HandleBuild)
	mux.HandleFunc("/health", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck) // Kubernetes-style alias
	mux.HandleFunc("/jobs", s.jobHandlers.HandleJobs)
	mux.HandleFunc("/jobs/", s.jobHandlers.HandleJob)

	return mux
}

func (s *Server) startIngestServerWithListener(_ context.Context, ln net.Listener) error {
	// The build endpoint runs the executor synchronously, so the write
	// timeout must outlast the configured executor timeout.
	writeTimeout := s.cfg.Executor.Timeout.Std() + 30*time.Second

	s.ingestServer = &http.Server{
		Handler:      s.mchain(s.ingestMux()),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s.startServerWithListener("ingest", s.ingestServer, ln)
}
