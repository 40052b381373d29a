package main

import (
	"github.com/dvasquez/sketchem/internal/mol"
	"github.com/dvasquez/sketchem/internal/mol/notifiers"
)

// molLoggerAdapter adapts the server's Logger to the mol.Logger interface
type molLoggerAdapter struct {
	logger *Logger
}

func (a *molLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *molLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *molLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *molLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server represents the HTTP server for sketchem
type Server struct {
	sessions          *mol.SessionManager
	globalNotifierMgr *mol.NotificationManager
	wsNotifier        *notifiers.WebSocketNotifier
	logger            *Logger
}

// NewServer creates a new server instance. A WebSocket notifier is always
// registered so /ws subscribers see every edit.
func NewServer(logger *Logger) (*Server, error) {
	// Convert server logger to mol.Logger interface
	molLogger := &molLoggerAdapter{logger: logger}
	globalMgr := mol.NewNotificationManagerWithLogger(molLogger)

	ws := notifiers.NewWebSocketNotifier("ws")
	if err := globalMgr.RegisterNotifier(ws); err != nil {
		ws.Close()
		globalMgr.Close()
		return nil, err
	}

	return &Server{
		sessions:          mol.NewSessionManager(globalMgr, molLogger),
		globalNotifierMgr: globalMgr,
		wsNotifier:        ws,
		logger:            logger,
	}, nil
}

// applyFileConfig applies reloadable settings from the YAML config file:
// the log level and the declared webhook notifiers. Webhooks already
// registered under the same ID are left alone.
func (s *Server) applyFileConfig(cfg FileConfig) {
	if cfg.LogLevel != "" {
		s.logger.SetLevel(cfg.LogLevel)
	}
	for _, wh := range cfg.Webhooks {
		if wh.ID == "" || wh.URL == "" {
			s.logger.Warnf("Skipping webhook config without id or url")
			continue
		}
		if _, exists := s.globalNotifierMgr.GetNotifier(wh.ID); exists {
			continue
		}
		notifier := notifiers.NewWebhookNotifier(wh.ID, wh.URL)
		for k, v := range wh.Headers {
			notifier.SetHeader(k, v)
		}
		if err := s.globalNotifierMgr.RegisterNotifier(notifier); err != nil {
			s.logger.Warnf("Failed to register webhook notifier: id=%s error=%v", wh.ID, err)
			continue
		}
		s.logger.Infof("Webhook notifier registered: id=%s url=%s", wh.ID, wh.URL)
	}
}

// Close shuts down the notifier fan-out.
func (s *Server) Close() {
	s.globalNotifierMgr.Close()
}
