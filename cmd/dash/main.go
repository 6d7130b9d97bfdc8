package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogadapters "github.com/dejobratic/shopdash/internal/catalog/adapters"
	catalogkv "github.com/dejobratic/shopdash/internal/catalog/adapters/kv"
	"github.com/dejobratic/shopdash/internal/catalog/analytics"
	catalogapp "github.com/dejobratic/shopdash/internal/catalog/app"
	"github.com/dejobratic/shopdash/internal/catalog/domain"
	catalogmetrics "github.com/dejobratic/shopdash/internal/catalog/metrics"
	"github.com/dejobratic/shopdash/internal/config"
	"github.com/dejobratic/shopdash/internal/kvstore"
	"github.com/dejobratic/shopdash/internal/querycache"
	"github.com/dejobratic/shopdash/internal/seed"
	"github.com/dejobratic/shopdash/internal/telemetry"
	"go.opentelemetry.io/otel"
)

const usage = `usage: dash <command> [args]

commands:
  seed                        write the starter dataset into empty slots
  list-products               print the product collection
  list-orders                 print the order collection
  get-product <id>            print one product
  get-order <id>              print one order
  create-product <json-file>  create a product from a form file
  create-order <json-file>    create an order from a form file
  update-product <id> <json-file>  rewrite a product from a form file
  update-order <id> <json-file>    rewrite an order from a form file
  delete-product <id>         delete a product
  delete-order <id>           delete an order
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	service, store, err := wire(cfg, logger)
	if err != nil {
		logger.Error("failed to wire dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closer, ok := store.(*kvstore.SQLiteStore); ok {
			_ = closer.Close()
		}
	}()

	if err := run(ctx, service, store, os.Args[1:]); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func wire(cfg *config.Config, logger *slog.Logger) (*catalogapp.Service, kvstore.Store, error) {
	meter := otel.GetMeterProvider().Meter(cfg.Service.Name)

	storeMetrics, err := kvstore.NewMetrics(meter)
	if err != nil {
		return nil, nil, err
	}
	repoMetrics, err := catalogmetrics.NewMetrics(meter)
	if err != nil {
		return nil, nil, err
	}
	cacheMetrics, err := querycache.NewMetrics(meter)
	if err != nil {
		return nil, nil, err
	}

	backing := kvstore.Open(kvstore.Config{
		Path:       cfg.Store.Path,
		SimLatency: cfg.Store.SimLatency,
	}, logger)
	store := kvstore.NewInstrumentedStore(backing, storeMetrics)

	products := catalogadapters.NewObservableProductRepository(
		catalogkv.NewProductRepository(store, analytics.NewRandomProvider()),
		repoMetrics,
	)
	orders := catalogadapters.NewObservableOrderRepository(
		catalogkv.NewOrderRepository(store),
		repoMetrics,
	)

	cache, err := querycache.New(cfg.Cache.StaleAfter, cfg.Cache.MaxEntries, logger, cacheMetrics)
	if err != nil {
		return nil, nil, err
	}
	mutator := querycache.NewMutator(cache, logger, cacheMetrics)

	return catalogapp.NewService(products, orders, cache, mutator), backing, nil
}

func run(ctx context.Context, service *catalogapp.Service, store kvstore.Store, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "seed":
		return seed.Ensure(ctx, store)

	case "list-products":
		products, err := service.ListProducts(ctx)
		if err != nil {
			return err
		}
		return printJSON(products)

	case "list-orders":
		orders, err := service.ListOrders(ctx)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "get-product":
		id, err := argAt(args, 1, "product id")
		if err != nil {
			return err
		}
		product, err := service.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			fmt.Println("product not found")
			return nil
		}
		return printJSON(product)

	case "get-order":
		id, err := argAt(args, 1, "order id")
		if err != nil {
			return err
		}
		order, err := service.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			fmt.Println("order not found")
			return nil
		}
		return printJSON(order)

	case "create-product":
		path, err := argAt(args, 1, "form file")
		if err != nil {
			return err
		}
		var form domain.ProductForm
		if err := readForm(path, &form); err != nil {
			return err
		}
		product, err := service.CreateProduct(ctx, form)
		if err != nil {
			return err
		}
		return printJSON(product)

	case "create-order":
		path, err := argAt(args, 1, "form file")
		if err != nil {
			return err
		}
		var form domain.OrderForm
		if err := readForm(path, &form); err != nil {
			return err
		}
		order, err := service.CreateOrder(ctx, form)
		if err != nil {
			return err
		}
		return printJSON(order)

	case "update-product":
		id, err := argAt(args, 1, "product id")
		if err != nil {
			return err
		}
		path, err := argAt(args, 2, "form file")
		if err != nil {
			return err
		}
		var form domain.ProductForm
		if err := readForm(path, &form); err != nil {
			return err
		}
		product, err := service.UpdateProduct(ctx, id, form)
		if err != nil {
			return err
		}
		return printJSON(product)

	case "update-order":
		id, err := argAt(args, 1, "order id")
		if err != nil {
			return err
		}
		path, err := argAt(args, 2, "form file")
		if err != nil {
			return err
		}
		var form domain.OrderForm
		if err := readForm(path, &form); err != nil {
			return err
		}
		order, err := service.UpdateOrder(ctx, id, form)
		if err != nil {
			return err
		}
		return printJSON(order)

	case "delete-product":
		id, err := argAt(args, 1, "product id")
		if err != nil {
			return err
		}
		return service.DeleteProduct(ctx, id)

	case "delete-order":
		id, err := argAt(args, 1, "order id")
		if err != nil {
			return err
		}
		return service.DeleteOrder(ctx, id)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func argAt(args []string, i int, name string) (string, error) {
	if len(args) <= i || args[i] == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return args[i], nil
}

func readForm(path string, out any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read form file: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode form file: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
