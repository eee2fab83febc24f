package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/accounthub/internal/accounts/api/rest"
	"github.com/louisbranch/accounthub/internal/accounts/directory"
	"github.com/louisbranch/accounthub/internal/accounts/mail"
	"github.com/louisbranch/accounthub/internal/accounts/storage/sqlite"
	"github.com/louisbranch/accounthub/internal/accounts/token"
)

// Server hosts the account directory service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
}

// New creates a configured account server listening on addr.
func New(addr string) (*Server, error) {
	store, err := openAccountStore()
	if err != nil {
		return nil, err
	}

	tokenConfig, err := token.LoadConfigFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	codec, err := token.NewCodec(tokenConfig.Secret, tokenConfig.TTL, nil)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	service := directory.NewService(store, store, codec, &mail.LogSender{}, nil, nil)
	api := rest.NewServer(service, log.Default())

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: api.Handler()},
		store:      store,
	}, nil
}

// Addr returns the listener address for the account server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an account server until the context ends.
func Run(ctx context.Context, addr string) error {
	accountServer, err := New(addr)
	if err != nil {
		return err
	}
	return accountServer.Serve(ctx)
}

// Serve starts the account server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("account server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}

	select {
	case <-ctx.Done():
		shutdown()
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openAccountStore() (*sqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("ACCOUNTHUB_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "accounts.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open account sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close account store: %v", err)
		}
	}
}
