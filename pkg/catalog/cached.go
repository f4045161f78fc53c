// pkg/catalog/cached.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zdsctl/pkg/types"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// CachedInspector 是一个装饰器，为底层的 Source 添加 Redis 缓存层。
// LISTCAT 一来一回要过 mvscmdauth，批量收敛时同一个名字会被问很多次，
// 缓存的就是这两类高频事实：编目卷列表、组织类型。
// 变更原语成功后通过 Invalidate 清键，容忍带外修改靠 TTL 兜底。
type CachedInspector struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
}

type CacheConfig struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 缓存过期时间 (例如 30s)
}

func NewCachedInspector(inner Source, cfg CacheConfig) (*CachedInspector, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedInspector{inner: inner, client: client, ttl: cfg.TTL}, nil
}

// 缓存值用 CBOR 编码，短 key 省空间
type cachedVolumes struct {
	Volumes []string `cbor:"v"`
}

type cachedType struct {
	Type string `cbor:"t"`
}

func volsKey(name types.DsName) string { return "zds:vols:" + name.Upper().String() }
func typeKey(name types.DsName) string { return "zds:type:" + name.Upper().String() }

func (c *CachedInspector) CatalogedVolumes(ctx context.Context, name types.DsName) ([]types.Volume, error) {
	key := volsKey(name)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var v cachedVolumes
		if cbor.Unmarshal(raw, &v) == nil {
			return v.Volumes, nil
		}
		// 解不开的脏值直接丢弃，走下面的回源
	} else if !errors.Is(err, redis.Nil) {
		// Redis 故障时退化成直查，不能让缓存层放大故障
		return c.inner.CatalogedVolumes(ctx, name)
	}

	vols, err := c.inner.CatalogedVolumes(ctx, name)
	if err != nil {
		return nil, err
	}
	if raw, err := cbor.Marshal(cachedVolumes{Volumes: vols}); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return vols, nil
}

func (c *CachedInspector) IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	if len(volumes) == 0 {
		// 无卷判定的样式匹配在底层，不缓存
		return c.inner.IsCataloged(ctx, name, nil)
	}
	// 卷判定基于缓存过的卷列表做交集，语义和底层完全一致
	cataloged, err := c.CatalogedVolumes(ctx, name)
	if err != nil {
		return false, err
	}
	want := map[string]bool{}
	for _, v := range types.UpperVolumes(volumes) {
		want[v] = true
	}
	for _, v := range cataloged {
		if want[v] {
			return true, nil
		}
	}
	return false, nil
}

func (c *CachedInspector) DataSetType(ctx context.Context, name types.DsName, volume types.Volume) (types.DsType, error) {
	if volume != "" {
		// 带卷的查询牵扯 VTOC 证据，不进缓存
		return c.inner.DataSetType(ctx, name, volume)
	}

	key := typeKey(name)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var v cachedType
		if cbor.Unmarshal(raw, &v) == nil {
			return types.DsType(v.Type), nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return c.inner.DataSetType(ctx, name, volume)
	}

	t, err := c.inner.DataSetType(ctx, name, volume)
	if err != nil {
		return t, err
	}
	if t != types.TypeUnknown {
		if raw, err := cbor.Marshal(cachedType{Type: string(t)}); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
	}
	return t, nil
}

func (c *CachedInspector) IsVSAM(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	return c.inner.IsVSAM(ctx, name, volumes)
}

func (c *CachedInspector) VolumeOf(ctx context.Context, name types.DsName) (types.Volume, error) {
	return c.inner.VolumeOf(ctx, name)
}

// Invalidate 清掉一个名字的全部缓存键，变更原语成功后调用
func (c *CachedInspector) Invalidate(ctx context.Context, name types.DsName) error {
	return c.client.Del(ctx, volsKey(name), typeKey(name)).Err()
}
