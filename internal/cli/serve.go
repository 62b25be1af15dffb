package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kylejryan/momo-invoice-backend/internal/awsutil"
	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/ddb"
	"github.com/kylejryan/momo-invoice-backend/internal/devserver"
	"github.com/kylejryan/momo-invoice-backend/internal/invoice"
	"github.com/kylejryan/momo-invoice-backend/internal/logging"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"

	"github.com/spf13/cobra"
)

const defaultListen = ":8080"

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the invoice API over HTTP against real or emulated AWS",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, addr, err := resolveServeConfig(configPath, listen)
			if err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), env.LogLevel, logging.Text)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := awsutil.Load(ctx, env)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			ctrl := invoice.NewController(env,
				&s3io.Store{S3: awsutil.NewS3(cfg, env)},
				&ddb.Repo{DB: awsutil.NewDynamoDB(cfg, env), Table: env.Table},
				log,
			)

			srv := &http.Server{
				Addr:              addr,
				Handler:           devserver.NewRouter(ctrl, log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", addr, "bucket", env.Bucket, "table", env.Table)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			log.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding environment settings")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default "+defaultListen+")")
	return cmd
}

// resolveServeConfig layers the optional YAML file over the environment.
// The --listen flag wins over the file.
func resolveServeConfig(configPath, listen string) (config.Env, string, error) {
	env := config.Load()
	addr := defaultListen
	if configPath != "" {
		fc, err := config.LoadFile(configPath)
		if err != nil {
			return env, "", err
		}
		env = env.Overlay(fc)
		if fc.Listen != "" {
			addr = fc.Listen
		}
	}
	if listen != "" {
		addr = listen
	}
	return env, addr, nil
}
