package cache

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client-supplied correlation ids are never persisted; they live here just
// long enough for the response that created an entity to echo them back.
const clientIDTTL = 60 * time.Second

// ClientIDCache stores client-supplied correlation ids keyed by
// (request, entity type, entity id).
type ClientIDCache struct {
	entries Cache[string, string]
}

func NewClientIDCache() *ClientIDCache {
	return &ClientIDCache{
		entries: NewTTLCache[string, string](),
	}
}

func clientIDKey(requestID string, entityType string, entityID snowflake.ID) string {
	return fmt.Sprintf("client-id-%s-%s-%s", requestID, entityType, entityID.String())
}

func (c *ClientIDCache) Set(requestID string, entityType string, entityID snowflake.ID, clientID string) {
	if clientID == "" {
		return
	}
	c.entries.Set(clientIDKey(requestID, entityType, entityID), clientID, clientIDTTL)
}

func (c *ClientIDCache) Get(requestID string, entityType string, entityID snowflake.ID) (string, bool) {
	return c.entries.Get(clientIDKey(requestID, entityType, entityID))
}
