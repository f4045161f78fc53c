package commands

import (
	"fmt"
	"os"

	"zdsctl/pkg/app"
	"zdsctl/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	ZDS *app.App
)

var rootCmd = &cobra.Command{
	Use:   "zds",
	Short: "zdsctl: declarative z/OS data set lifecycle management",
	Long: `zds converges data sets toward a requested state (present, absent,
cataloged, uncataloged), resolving catalog/volume divergence along the way.`,
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 统一初始化 App
		var err error
		ZDS, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize zdsctl: %w", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zds/config.yaml)")

	// 2. 高频配置项同时开放成命令行参数，绑定到 Viper
	// 这样用户既可以在 yaml 里写，也可以用参数覆盖
	rootCmd.PersistentFlags().String("tmp-hlq", "", "high level qualifier for temporary data sets")
	err := viper.BindPFlag("dataset.tmp_hlq", rootCmd.PersistentFlags().Lookup("tmp-hlq"))
	if err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
