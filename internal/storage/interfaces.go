package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/models"
)

// TokenCache stores resolved token metadata. Quotes are never cached.
type TokenCache interface {
	// GetToken returns the cached descriptor; ok is false on a miss.
	GetToken(ctx context.Context, address string) (desc dex.TokenDescriptor, ok bool, err error)

	// SetToken caches a descriptor
	SetToken(ctx context.Context, desc dex.TokenDescriptor) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	io.Closer
}

// ExecutionPublisher fans out execution events. Publishing is best effort.
type ExecutionPublisher interface {
	PublishExecution(ctx context.Context, ev *models.ExecutionEvent) error
}

// ExecutionHandler is a function that processes execution events
type ExecutionHandler func(*models.ExecutionEvent)

// ExecutionSubscriber streams execution events until ctx is done.
type ExecutionSubscriber interface {
	Subscribe(ctx context.Context, pattern string, handler ExecutionHandler) error
}
