package yeelight

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// ErrNoReply is returned by PropertyCache when the bulb stayed silent.
var ErrNoReply = errors.New("device did not reply")

const (
	DefaultPropertyTTL  = 5 * time.Second
	defaultPropertySize = 256
)

// PropertyCache answers get_prop queries, remembering the answer for a short
// while so that bursts of lookups for the same bulb cost one exchange.
type PropertyCache struct {
	transport *Transport
	cache     gcache.Cache
	sf        singleflight.Group
}

type propertyCacheOptions struct {
	ttl  time.Duration
	size int
}

type PropertyCacheOption func(*propertyCacheOptions)

func WithPropertyTTL(ttl time.Duration) PropertyCacheOption {
	return func(opts *propertyCacheOptions) {
		opts.ttl = ttl
	}
}

func WithPropertyCacheSize(size int) PropertyCacheOption {
	return func(opts *propertyCacheOptions) {
		opts.size = size
	}
}

func NewPropertyCache(transport *Transport, opts ...PropertyCacheOption) *PropertyCache {
	options := &propertyCacheOptions{
		ttl:  DefaultPropertyTTL,
		size: defaultPropertySize,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &PropertyCache{
		transport: transport,
		cache:     gcache.New(options.size).LRU().Expiration(options.ttl).Build(),
	}
}

// Get returns the named properties of device, keyed by name.
func (p *PropertyCache) Get(ctx context.Context, device Device, names ...string) (map[string]string, error) {
	key := propertyKey(device, names)

	if cached, err := p.cache.Get(key); err == nil {
		return maps.Clone(cached.(map[string]string)), nil
	}

	// The shared query outlives any single caller; each caller stops waiting
	// on its own ctx.
	queryCtx := context.WithoutCancel(ctx)
	ch := p.sf.DoChan(key, func() (interface{}, error) {
		props, err := p.query(queryCtx, device, names)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(key, props); err != nil {
			return nil, fmt.Errorf("error caching properties: %w", err)
		}
		return props, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return maps.Clone(res.Val.(map[string]string)), nil
	}
}

// Invalidate forgets everything cached for the device with the given id.
func (p *PropertyCache) Invalidate(deviceID string) {
	prefix := deviceID + "|"
	for _, key := range p.cache.Keys(false) {
		if k, ok := key.(string); ok && strings.HasPrefix(k, prefix) {
			p.cache.Remove(k)
		}
	}
}

func (p *PropertyCache) query(ctx context.Context, device Device, names []string) (map[string]string, error) {
	line, ok, err := p.transport.Send(ctx, device, GetProperties(names...))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("error querying %s: %w", device.Address(), ErrNoReply)
	}

	reply, err := ParseReply(line)
	if err != nil {
		return nil, err
	}
	if err := reply.Err(); err != nil {
		return nil, err
	}

	values := reply.Strings()
	if len(values) != len(names) {
		return nil, fmt.Errorf("expected %d property values, got %d", len(names), len(values))
	}

	props := make(map[string]string, len(names))
	for i, name := range names {
		props[name] = values[i]
	}
	return props, nil
}

// propertyKey starts with the device id so that Invalidate can match on it;
// the address keeps devices without an id apart.
func propertyKey(device Device, names []string) string {
	return device.ID + "|" + device.Address() + "|" + strings.Join(names, ",")
}
