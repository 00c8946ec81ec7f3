package web

import "context"

// Logger receives serve errors from HTTPServer.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// NoopServer is used when the control panel is disabled.
type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                     { return nil }
