package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
	"github.com/jsamuelsen/quote-engine/internal/ports"
)

// Store is a quotation store that can report health and release resources.
type Store interface {
	ports.QuotationStore
	ports.HealthChecker
	Close() error
}

// httpStore adapts the legacy backend client to Store.
type httpStore struct {
	*acl.StoreClient
}

func (httpStore) Close() error { return nil }

// New builds the store named by cfg.Persistence.Driver.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	p := &cfg.Persistence

	logger.Info("opening quotation store", slog.String("driver", p.Driver))

	switch p.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil

	case config.DriverSQLite, config.DriverPostgres:
		if p.DSN == "" {
			return nil, fmt.Errorf("persistence.dsn is required for driver %s", p.Driver)
		}

		return OpenGorm(p.Driver, p.DSN, p.Table, cfg.Log.Level == "trace")

	case config.DriverDynamoDB:
		if p.Table == "" {
			return nil, fmt.Errorf("persistence.table is required for driver %s", p.Driver)
		}

		client, err := NewDynamoClient(ctx, p)
		if err != nil {
			return nil, err
		}

		return NewDynamoStore(client, p.Table), nil

	case config.DriverHTTP:
		svc := cfg.Services.Persistence
		if svc.BaseURL == "" {
			return nil, fmt.Errorf("services.persistence.base_url is required for driver %s", p.Driver)
		}

		client, err := clients.New(clients.ConfigFor(&cfg.Client, &svc, logger))
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", svc.Name, err)
		}

		return httpStore{acl.NewStoreClient(client, svc.Name)}, nil

	default:
		return nil, fmt.Errorf("unsupported persistence driver %q", p.Driver)
	}
}
