package backend

import (
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Factory builds a Client.
type Factory func() (Client, error)

// Lazy holds a Client that is constructed on first use and reused for the
// lifetime of the process. Concurrent first callers block until a single
// construction finishes. A failed construction is not cached; the next call
// tries again.
type Lazy struct {
	factory Factory
	logger  hclog.Logger

	mu     sync.Mutex
	client Client
}

// NewLazy returns a Lazy that builds its client with factory.
func NewLazy(factory Factory, logger hclog.Logger) *Lazy {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Lazy{
		factory: factory,
		logger:  logger,
	}
}

// Static returns a Lazy that always yields c.
func Static(c Client) *Lazy {
	return &Lazy{client: c, logger: hclog.NewNullLogger()}
}

// Get returns the shared client, constructing it if needed.
func (l *Lazy) Get() (Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}
	if l.factory == nil {
		return nil, fmt.Errorf("backing store client factory is not configured")
	}

	l.logger.Info("initializing backing store client")
	c, err := l.factory()
	if err != nil {
		l.logger.Error("failed to initialize backing store client", "error", err)
		return nil, fmt.Errorf("error initializing backing store client: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("backing store client factory returned nil")
	}
	l.client = c
	l.logger.Info("backing store client created")

	return l.client, nil
}

// Close closes the constructed client when it implements io.Closer. A later
// Get builds a new client.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.client
	l.client = nil
	if closer, ok := c.(io.Closer); ok {
		l.logger.Info("closing backing store client")
		return closer.Close()
	}
	return nil
}
