package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Wirelextechs/datagod/model"
)

// The cache is optional: every call must be safe on a nil *Cache so the
// service runs without Redis.
func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache

	pkgs, ok := c.GetPackages(context.Background())
	assert.False(t, ok)
	assert.Nil(t, pkgs)

	// Must not panic.
	c.SetPackages(context.Background(), []model.Package{{ID: 1}})
}

func TestConnect_EmptyAddr(t *testing.T) {
	assert.Nil(t, Connect(""))
}
