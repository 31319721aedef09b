package service

import (
	"context"
	"time"

	"moxbot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
)

type Cardinality int

const (
	// Single collectors fire once, then become terminal.
	Single Cardinality = iota
	// Multi collectors fire on every matching event until disposed or expired.
	Multi
)

// DefaultExpiry sits just under the platform's interaction-token validity
// window, so a collector never outlives its ability to respond.
const DefaultExpiry = 14*time.Minute + 50*time.Second

type CollectFunc func(ctx context.Context, interaction *domain.Interaction, args []string)

// Collector is a registered waiter for one class of inbound interaction.
// All mutable fields are guarded by the owning Registry's lock.
type Collector struct {
	key          string
	allowedUsers []string
	cardinality  Cardinality
	dependsOn    *Collector
	expiresAt    time.Time
	onCollect    CollectFunc

	fired bool
	tail  chan struct{}
	exit  chan struct{}
}

type CollectorOption func(*Collector)

// WithAllowedUsers restricts which users may trigger the collector. Without
// it, anyone may.
func WithAllowedUsers(userIDs ...string) CollectorOption {
	return func(c *Collector) {
		c.allowedUsers = userIDs
	}
}

// WithCardinality sets whether the collector fires once or repeatedly.
func WithCardinality(cardinality Cardinality) CollectorOption {
	return func(c *Collector) {
		c.cardinality = cardinality
	}
}

// WithDependency makes the collector eligible only after dep has fired at
// least once.
func WithDependency(dep *Collector) CollectorOption {
	return func(c *Collector) {
		c.dependsOn = dep
	}
}

// WithExpiry overrides the default expiry window.
func WithExpiry(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.expiresAt = time.Now().Add(d)
	}
}

func NewCollector(onCollect CollectFunc, opts ...CollectorOption) (*Collector, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	c := &Collector{
		key:       id.String(),
		onCollect: onCollect,
		expiresAt: time.Now().Add(DefaultExpiry),
		exit:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Collector) Key() string {
	return c.key
}

// Token encodes a correlation token for this collector, suitable for use as
// a component custom ID.
func (c *Collector) Token(args ...string) string {
	return domain.EncodeToken(c.key, args...)
}

func (c *Collector) allows(userID string) bool {
	if len(c.allowedUsers) == 0 {
		return true
	}

	for _, id := range c.allowedUsers {
		if id == userID {
			return true
		}
	}

	return false
}
