package service

import (
	"context"
	"fmt"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
)

// Cache is the byte-level store the hierarchy cache sits on. Implementations
// live in infra (memory LRU, Redis). Failures are swallowed by the
// implementation: a miss is always a safe answer.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, keys ...string)
}

// AlertDispatcher enqueues low-stock notifications. May be nil.
type AlertDispatcher interface {
	EnqueueStockAlert(ctx context.Context, alert dto.StockAlert) error
}

func hierarchyKey(rootID uint, depth int) string {
	return fmt.Sprintf("hierarchy:%d:%d", rootID, depth)
}

// hierarchyKeys lists every key a root can be cached under.
func hierarchyKeys(rootIDs []uint) []string {
	keys := make([]string, 0, len(rootIDs)*MaxHierarchyDepth)
	for _, id := range rootIDs {
		for d := 1; d <= MaxHierarchyDepth; d++ {
			keys = append(keys, hierarchyKey(id, d))
		}
	}
	return keys
}
