package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthbridge/hl7v2/ack"
	"github.com/healthbridge/hl7v2/hl7"
	"github.com/healthbridge/hl7v2/mllp"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MLLP listener that acknowledges inbound messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	handler := newAckHandler(logger)

	opts := []mllp.ServerOption{
		mllp.WithHandler(handler),
		mllp.WithMaxConnections(cfg.MaxConnections),
		mllp.WithReadTimeout(cfg.ReadTimeout),
		mllp.WithWriteTimeout(cfg.WriteTimeout),
		mllp.WithMaxMessageSize(cfg.MaxMessageSize),
	}

	if cfg.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("load TLS keypair: %w", err)
		}
		opts = append(opts, mllp.WithTLSConfig(&tls.Config{Certificates: []tls.Certificate{cert}}))
	}

	srv := mllp.NewServer(opts...)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	logger.Info().Str("addr", cfg.ListenAddr).Msg("hl7lint serve: listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("hl7lint serve: shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Serve(listener); err != nil && err != mllp.ErrServerClosed {
		logger.Error().Err(err).Msg("server exited")
		return err
	}
	return nil
}

// newAckHandler returns an mllp.Handler that accepts every parseable
// message, logging each exchange through logger. If the builder fails,
// the handler returns its error and the server sends no response.
func newAckHandler(logger zerolog.Logger) mllp.Handler {
	builder := ack.NewBuilder()

	return mllp.HandlerFunc(func(ctx context.Context, msg hl7.Message) (hl7.Message, error) {
		logger.Info().
			Str("type", msg.Type()).
			Str("control_id", msg.ControlID()).
			Msg("received message")

		response, err := builder.Accept(msg)
		if err != nil {
			logger.Error().Err(err).Str("control_id", msg.ControlID()).Msg("failed to build ACK")
			return nil, err
		}
		return response, nil
	})
}
