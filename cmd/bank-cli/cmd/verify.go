package cmd

import (
	"context"
	"fmt"
	"time"

	"bank-core/internal/service/auth"
	"bank-core/pkg/cache"

	"github.com/spf13/cobra"
)

// verifyCmd 代表 verify 命令
var verifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "将用户标记为已验证",
	Long:  `人工审核通过后执行。未验证的用户可以登录查看，但不能开户。`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := connectStore()
		if err != nil {
			fmt.Println(err)
			return
		}

		// verify 不涉及会话，给个内存 cache 即可
		svc := auth.NewService(store, cache.NewMemoryCache(time.Hour, time.Hour))
		msg, err := svc.Verify(context.Background(), args[0])
		if err != nil {
			fmt.Printf("验证失败: %v\n", err)
			return
		}
		fmt.Printf("%s: %s\n", args[0], msg)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
