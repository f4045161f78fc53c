package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		// 如果用户指定了文件，直接使用
		viper.SetConfigFile(cfgFile)
	} else {
		// 否则按优先级搜索
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：
		// 1. 当前目录
		viper.AddConfigPath(".")
		// 2. 当前目录下的 .zds
		viper.AddConfigPath(".zds")
		// 3. 用户主目录下的 .zds
		viper.AddConfigPath(filepath.Join(home, ".zds"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (ZDS_JOURNAL_HOST 等)
	viper.SetEnvPrefix("ZDS")
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错, 默认值和环境变量照样能跑;
		// 找到了但读不进来才是错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// 外部命令执行
	viper.SetDefault("executor.timeout", "5m")

	// 临时数据集的高层限定符
	viper.SetDefault("dataset.tmp_hlq", "")

	// 留痕数据库默认走本地 sqlite 文件
	viper.SetDefault("journal.driver", "sqlite")
	viper.SetDefault("journal.path", ".zds/journal.db")
	viper.SetDefault("journal.host", "localhost")
	viper.SetDefault("journal.port", 5432)
	viper.SetDefault("journal.sslmode", "disable")

	// 目录查询缓存 (可选, 不配 redis_url 就不启用)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "30s")
}
