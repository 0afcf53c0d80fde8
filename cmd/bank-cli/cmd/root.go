package cmd

import (
	"fmt"
	"os"

	"bank-core/internal/repository"
	"bank-core/pkg/config"
	"bank-core/pkg/database"
	"bank-core/pkg/logger"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "bank-cli",
	Short: "银行账本后台运维命令行工具",
	Long: `bank-core 的运维工具。
支持人工审核用户 (verify)、写入演示数据 (seed) 等管理操作，直连数据库执行。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// connectStore 加载配置并返回数据库仓储，子命令共用
func connectStore() (*repository.GormStore, error) {
	config.Init()
	logger.Init(config.Global.App.Env)

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return repository.NewGormStore(db), nil
}
