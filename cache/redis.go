package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Wirelextechs/datagod/model"
)

const (
	packagesKey = "packages:enabled"
	packagesTTL = 5 * time.Minute
)

// Cache is a read-through cache for the package catalog. It is optional:
// a nil *Cache is a valid no-op cache, and a Redis outage only costs the
// cache hit, never the request.
type Cache struct {
	rdb *redis.Client
}

// Connect returns nil (and logs) when addr is empty or Redis is not
// reachable; the service runs fine without it.
func Connect(addr string) *Cache {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("Redis not available at %s, running without cache: %v", addr, err)
		return nil
	}

	log.Printf("Redis connected at %s", addr)
	return &Cache{rdb: rdb}
}

func (c *Cache) GetPackages(ctx context.Context) ([]model.Package, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, packagesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var pkgs []model.Package
	if err := json.Unmarshal(raw, &pkgs); err != nil {
		return nil, false
	}
	return pkgs, true
}

func (c *Cache) SetPackages(ctx context.Context, pkgs []model.Package) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(pkgs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, packagesKey, raw, packagesTTL).Err(); err != nil {
		log.Printf("failed to cache packages: %v", err)
	}
}
