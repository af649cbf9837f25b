// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/client-portal/internal/ai"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a private in-memory sqlite database and migrates models.
func OpenDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Generator is a scripted ai.Generator. Replies are consumed in order; once
// exhausted the last one repeats.
type Generator struct {
	mu       sync.Mutex
	Replies  []string
	Err      error
	Text     []ai.TextRequest
	Struct   []ai.StructuredRequest
	position int
}

func (g *Generator) next() (string, error) {
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Replies) == 0 {
		return "", nil
	}
	i := g.position
	if i >= len(g.Replies) {
		i = len(g.Replies) - 1
	}
	g.position++
	return g.Replies[i], nil
}

func (g *Generator) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Text = append(g.Text, req)
	return g.next()
}

func (g *Generator) GenerateStructured(ctx context.Context, req ai.StructuredRequest, out any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Struct = append(g.Struct, req)
	raw, err := g.next()
	if err != nil {
		return err
	}
	return ai.DecodeJSON(raw, out)
}

// Calls reports how many generation requests were made.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Text) + len(g.Struct)
}

// MemoryCache is a map-backed JSON cache.
type MemoryCache struct {
	mu    sync.Mutex
	Items map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Items: map[string][]byte{}}
}

func (c *MemoryCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.Items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *MemoryCache) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Items[key] = b
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Items, k)
	}
	return nil
}
