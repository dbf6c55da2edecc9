package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/bazaar/internal/accounts"
	"github.com/marshallshelly/bazaar/internal/auth"
	"github.com/marshallshelly/bazaar/internal/cascade"
	"github.com/marshallshelly/bazaar/internal/catalog"
	"github.com/marshallshelly/bazaar/internal/config"
	"github.com/marshallshelly/bazaar/internal/favorite"
	"github.com/marshallshelly/bazaar/internal/files"
	"github.com/marshallshelly/bazaar/internal/listing"
	"github.com/marshallshelly/bazaar/internal/orders"
	"github.com/marshallshelly/bazaar/internal/rating"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/internal/store/memory"
	"github.com/marshallshelly/bazaar/internal/store/postgres"
	"github.com/marshallshelly/bazaar/internal/transport"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

const shutdownTimeout = 10 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on BAZAAR_HTTP_ADDR. Uploaded images are stored in
BAZAAR_UPLOAD_DIR and served from the site root.

Examples:
  bazaar serve --db postgres://localhost/bazaar --migrate
  BAZAAR_STORE=memory bazaar serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	images, err := files.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	creds := auth.NewBcrypt(cfg.BcryptCost)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	cat := catalog.New(st, log)
	api := transport.NewServer(transport.Deps{
		Accounts:  accounts.New(st, images, creds, tokens, log),
		Listing:   listing.New(st, images, log),
		Catalog:   cat,
		Favorites: favorite.New(st, log),
		Ratings:   rating.New(st, log),
		Orders:    orders.New(st, cat, log),
		Cascade:   cascade.New(st, images, creds, log),
		Tokens:    tokens,
		Log:       log,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Router())
	mux.Handle("/", http.FileServer(http.Dir(images.Dir())))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "store": cfg.Store}).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}

	db, err := runtime.ConnectWithURL(ctx, cfg.DatabaseURL, runtime.PoolOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if migrateOnStart {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.WithField("versions", applied).Info("migrations applied")
	}
	return postgres.New(db), db.Close, nil
}
