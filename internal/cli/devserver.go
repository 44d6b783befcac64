package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrsteele09/go-task-client/internal/apifake"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newDevServerCmd(app *App) *cobra.Command {
	var (
		addr        string
		accessTTL   time.Duration
		authStatus  int
		noRotation  bool
		seedAccount string
	)
	cmd := &cobra.Command{
		Use:         "dev-server",
		Short:       "Run an in-memory task API for local development",
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			options := []apifake.Option{
				apifake.WithAccessTokenTTL(accessTTL),
				apifake.WithAuthFailureStatus(authStatus),
			}
			if noRotation {
				options = append(options, apifake.WithoutRotation())
			}
			server := apifake.New(options...)

			if seedAccount != "" {
				if err := seedDevAccount(server, seedAccount); err != nil {
					return err
				}
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start(addr)
			}()
			success(app.out, "Fake task API on http://%s (access tokens live %s)", displayAddr(addr), accessTTL)

			select {
			case err := <-errCh:
				return err
			case <-waitForStopSignal(cmd.Context()):
			}
			return shutdown(server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", time.Minute, "Access token lifetime")
	cmd.Flags().IntVar(&authStatus, "auth-status", http.StatusForbidden, "Status returned for an invalid or expired access token")
	cmd.Flags().BoolVar(&noRotation, "no-rotation", false, "Do not rotate refresh tokens")
	cmd.Flags().StringVar(&seedAccount, "seed", "", "Create an account up front, as name:email:password")
	return cmd
}

func seedDevAccount(server *apifake.Server, seed string) error {
	parts := strings.SplitN(seed, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("--seed wants name:email:password, got %q", seed)
	}
	if _, err := server.SeedUser(parts[0], parts[1], parts[2]); err != nil {
		return err
	}
	_, err := server.SeedTask(parts[1], tasks.TaskInput{Title: "Try the tasks CLI", Description: "tasks list, tasks add, tasks done"})
	return err
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func waitForStopSignal(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		stop()
		close(done)
	}()
	return done
}

func shutdown(server *apifake.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Fake task API stopped")
	return nil
}
