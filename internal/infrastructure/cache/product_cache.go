package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

const keyPrefix = "fsi:barcode:"

// originTimeout acota la consulta compartida al origen, que no depende de ningún llamador.
const originTimeout = 10 * time.Second

// notFoundMarker se guarda por un tiempo corto para no repetir consultas de códigos inexistentes.
const notFoundMarker = "-"

var _ repository.BarcodeResolver = (*CachedBarcodeResolver)(nil)

// CachedBarcodeResolver pone Redis delante de otro BarcodeResolver. Consultas simultáneas del
// mismo código comparten una sola llamada al origen. Si Redis falla se consulta el origen directo.
type CachedBarcodeResolver struct {
	next        repository.BarcodeResolver
	client      *redis.Client
	ttl         time.Duration
	notFoundTTL time.Duration
	group       singleflight.Group
	log         zerolog.Logger
}

// NewCachedBarcodeResolver envuelve next. client nil desactiva la caché (solo singleflight).
func NewCachedBarcodeResolver(next repository.BarcodeResolver, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedBarcodeResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedBarcodeResolver{
		next:        next,
		client:      client,
		ttl:         ttl,
		notFoundTTL: ttl / 10,
		log:         log.With().Str("component", "barcode_cache").Logger(),
	}
}

// ResolveBarcode devuelve el descriptor desde caché o desde el origen.
func (c *CachedBarcodeResolver) ResolveBarcode(ctx context.Context, barcode string) (*entity.ProductDescriptor, error) {
	key := keyPrefix + barcode
	if d, hit, err := c.get(ctx, key); hit {
		return d, err
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// La consulta compartida no hereda la cancelación de quien la inició: otra sesión
		// puede estar esperando el mismo código. Cada llamador corta su espera con su ctx.
		octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), originTimeout)
		defer cancel()
		d, err := c.next.ResolveBarcode(octx, barcode)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				c.set(octx, key, []byte(notFoundMarker), c.notFoundTTL)
			}
			return nil, err
		}
		if raw, mErr := json.Marshal(d); mErr == nil {
			c.set(octx, key, raw, c.ttl)
		}
		return d, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		d := *res.Val.(*entity.ProductDescriptor)
		return &d, nil
	}
}

// invalidate borra la entrada para que la próxima consulta vaya al origen.
func (c *CachedBarcodeResolver) invalidate(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("borrado de caché falló")
	}
}

func (c *CachedBarcodeResolver) get(ctx context.Context, key string) (*entity.ProductDescriptor, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché falló; se consulta el origen")
		}
		return nil, false, nil
	}
	if string(payload) == notFoundMarker {
		return nil, true, domain.ErrProductNotFound
	}
	var d entity.ProductDescriptor
	if err := json.Unmarshal(payload, &d); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("entrada de caché corrupta; se descarta")
		c.invalidate(ctx, key)
		return nil, false, nil
	}
	return &d, true, nil
}

func (c *CachedBarcodeResolver) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché falló")
	}
}
