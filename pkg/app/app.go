// pkg/app/app.go
package app

import (
	"context"
	"fmt"

	"zdsctl/pkg/catalog"
	"zdsctl/pkg/dataset"
	"zdsctl/pkg/journal"
	"zdsctl/pkg/reconcile"
	"zdsctl/pkg/vtoc"
	"zdsctl/pkg/zoscmd"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务
type App struct {
	Exec    zoscmd.Executor
	Vtoc    vtoc.Inspector
	Catalog catalog.Source
	// Inspector 是未加缓存装饰的巡检器, 属性快照 (zds view) 走它拿实时数据
	Inspector *catalog.Inspector
	Ops       *dataset.Operator
	Engine    *reconcile.Engine
	Journal   *journal.Repository
}

// NewApp 是工厂函数，负责组装这一台机器
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	// 1. 外部命令执行器 (Single Source of Truth: 全部设施调用都走它)
	exec := &zoscmd.HostExecutor{Timeout: viper.GetDuration("executor.timeout")}

	// 2. VTOC 和目录巡检
	vt := vtoc.NewIehlistInspector(exec)
	inspector := catalog.NewInspector(exec, vt)
	var facts catalog.Source = inspector

	// 3. 可选的 redis 缓存装饰层: 配了 cache.redis_url 才启用
	var invalidator dataset.Invalidator
	if url := viper.GetString("cache.redis_url"); url != "" {
		cached, err := catalog.NewCachedInspector(facts, catalog.CacheConfig{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init catalog cache: %w", err)
		}
		facts = cached
		invalidator = cached
	}

	// 4. 变更原语和收敛引擎
	ops := dataset.NewOperator(exec, vt, facts, viper.GetString("dataset.tmp_hlq"))
	if invalidator != nil {
		ops = ops.WithCache(invalidator)
	}
	engine := reconcile.NewEngine(facts, ops)

	// 5. 留痕数据库
	db, err := journal.NewDB(ctx, journal.Config{
		Driver:   viper.GetString("journal.driver"),
		Path:     viper.GetString("journal.path"),
		Host:     viper.GetString("journal.host"),
		Port:     viper.GetInt("journal.port"),
		User:     viper.GetString("journal.user"),
		Password: viper.GetString("journal.password"),
		DBName:   viper.GetString("journal.dbname"),
		SSLMode:  viper.GetString("journal.sslmode"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init journal: %w", err)
	}

	return &App{
		Exec:      exec,
		Vtoc:      vt,
		Catalog:   facts,
		Inspector: inspector,
		Ops:       ops,
		Engine:    engine,
		Journal:   journal.NewRepository(db),
	}, nil
}
