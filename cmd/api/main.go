package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lejockey/concierge/backend/internal/config"
	"github.com/lejockey/concierge/backend/internal/handler"
	"github.com/lejockey/concierge/backend/internal/model/menu"
	"github.com/lejockey/concierge/backend/internal/service/ai"
	"github.com/lejockey/concierge/backend/internal/service/chat"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
	"github.com/lejockey/concierge/backend/internal/service/order"
	"github.com/lejockey/concierge/backend/internal/storage/orders"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	catalog := loadCatalog(ctx, cfg.Catalog)

	// AI 后端可选，未配置时礼宾回复"暂不可用"的文案
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize AI provider: %v", err)
		log.Println("continuing without AI functionality - 请检查 GEMINI_API_KEY / ARK_* 环境变量")
		provider = nil
	}
	conciergeService := concierge.NewService(provider, catalog, ai.Options(cfg.AI))

	orderStore := orders.New(ctx, cfg.Orders)
	defer orderStore.Close()

	chatService := chat.NewService()
	orderService := order.NewService(catalog, orderStore, chatService)

	router := handler.NewRouter(handler.Dependencies{
		Catalog:        catalog,
		Chats:          chatService,
		Concierge:      conciergeService,
		Orders:         orderService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Speech.MaxUploadBytes,
		SpeechTimeout:  time.Duration(cfg.Speech.Timeout) * time.Second,
	})

	startServer(ctx, cfg.Server, router)
}

func loadCatalog(ctx context.Context, cfg config.CatalogConfig) *menu.MemoryStore {
	if cfg.Path == "" {
		store := menu.NewMemoryStore(menu.Seed())
		log.Printf("[menu] using embedded menu (%d items)", len(store.Items()))
		return store
	}

	catalog, err := menu.LoadFile(cfg.Path)
	if err != nil {
		log.Fatalf("failed to load menu %s: %v", cfg.Path, err)
	}
	store := menu.NewMemoryStore(catalog)
	log.Printf("[menu] loaded %d items from %s", len(catalog.Menu), cfg.Path)

	if cfg.Watch {
		watcher, err := menu.NewWatcher(cfg.Path, store)
		if err != nil {
			log.Printf("warning: menu hot reload disabled: %v", err)
			return store
		}
		watcher.OnReload(func(c menu.Catalog) {
			log.Printf("[menu] new conversations will use the updated menu (%d items, %d events)", len(c.Menu), len(c.Events))
		})
		go watcher.Run(ctx)
	}
	return store
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Le Jockey concierge backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
