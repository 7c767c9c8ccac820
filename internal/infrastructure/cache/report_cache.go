package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/transfer"
)

const versionKey = "stock-ledger:reports:version"

var _ transfer.PostingObserver = (*ReportCache)(nil)

// ReportCache caché versionada de reportes: cada traslado confirmado sube la
// versión y las claves anteriores expiran solas. Un *ReportCache nil o sin
// cliente no cachea: llama siempre al loader.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache construye la caché.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) enabled() bool { return c != nil && c.client != nil }

// Version devuelve la versión vigente, inicializándola en 1.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX: dos procesos que arrancan a la vez no se pisan
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey compone la clave con la versión vigente.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := "reports:" + strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON lee dest desde la caché o lo carga con loader y lo guarda.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todos los reportes cacheados.
func (c *ReportCache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

// Posted invalida la caché tras cada traslado confirmado.
func (c *ReportCache) Posted(ctx context.Context, _ *transfer.Receipt) error {
	return c.Bump(ctx)
}
