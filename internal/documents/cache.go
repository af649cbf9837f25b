package documents

import "context"

// Cache is an optional read-through layer in front of the table.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

func CacheKey(clientID string, t Type) string {
	return "doc:" + clientID + ":" + string(t)
}

// CacheKeys returns the key of every document type for one client.
func CacheKeys(clientID string) []string {
	out := make([]string, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, CacheKey(clientID, c.Type))
	}
	return out
}
