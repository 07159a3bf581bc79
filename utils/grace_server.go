package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second
	shutdownGrace      = 30 * time.Second

	gracefulEnvKey  = "IS_GRACEFUL"
	gracefulEnvPair = gracefulEnvKey + "=1"
	inheritedFD     = 3
)

// graceServer wraps http.Server with zero-downtime restarts. SIGTERM drains
// in-flight requests and exits; SIGUSR2 forks a replacement process that
// inherits the listener fd, then the old process drains.
type graceServer struct {
	srv *http.Server

	listener net.Listener
	// tcpListener is the raw listener whose fd passes to the replacement
	// process; under TLS it differs from listener.
	tcpListener  net.Listener
	inherited    bool
	signals      chan os.Signal
	shutdownDone chan struct{}
}

func newGraceServer(addr string, handler http.Handler) *graceServer {
	return &graceServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
		},
		inherited:    os.Getenv(gracefulEnvKey) != "",
		signals:      make(chan os.Signal, 1),
		shutdownDone: make(chan struct{}),
	}
}

// GraceServer serves HTTP on addr until SIGTERM.
func GraceServer(addr string, handler http.Handler) error {
	return newGraceServer(addr, handler).listenAndServe(nil)
}

// GraceServerTLS serves HTTPS on addr with the same restart semantics.
func GraceServerTLS(addr, certFile, keyFile string, handler http.Handler) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("load tls keypair: %w", err)
	}
	cfg := &tls.Config{
		NextProtos:   []string{"http/1.1"},
		Certificates: []tls.Certificate{cert},
	}
	return newGraceServer(addr, handler).listenAndServe(cfg)
}

func (g *graceServer) listenAndServe(tlsCfg *tls.Config) error {
	ln, err := g.listen()
	if err != nil {
		return err
	}
	g.tcpListener = ln
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}
	g.listener = ln

	go g.handleSignals()
	err = g.srv.Serve(g.listener)
	// Serve returns as soon as the listener closes; wait for the drain.
	<-g.shutdownDone
	return err
}

func (g *graceServer) listen() (net.Listener, error) {
	if g.inherited {
		ln, err := net.FileListener(os.NewFile(inheritedFD, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener fd: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", g.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", g.srv.Addr, err)
	}
	return ln, nil
}

func (g *graceServer) handleSignals() {
	signal.Notify(g.signals, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range g.signals {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("received SIGTERM, draining HTTP server")
			g.shutdown()
		case syscall.SIGUSR2:
			Sugar.Info("received SIGUSR2, restarting HTTP server")
			pid, err := g.forkChild()
			if err != nil {
				Sugar.Errorf("fork replacement failed: %v, continuing to serve", err)
				continue
			}
			Sugar.Infof("replacement process started, pid=%d; draining old server", pid)
			g.shutdown()
		}
	}
}

func (g *graceServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := g.srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown complete")
	}
	close(g.shutdownDone)
}

// forkChild re-executes the binary with the listener fd at inheritedFD and the
// graceful marker in the environment.
func (g *graceServer) forkChild() (int, error) {
	tcpLn, ok := g.tcpListener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is %T, cannot pass fd", g.tcpListener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("dup listener fd: %w", err)
	}

	env := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != gracefulEnvPair {
			env = append(env, e)
		}
	}
	env = append(env, gracefulEnvPair)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
