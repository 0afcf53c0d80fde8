package cmd

import (
	"context"
	"fmt"
	"time"

	"bank-core/internal/service/account"
	"bank-core/internal/service/auth"
	"bank-core/internal/service/transaction"
	"bank-core/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// seedCmd 代表 seed 命令
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入一套演示数据",
	Long: `创建两个已验证用户 (alice / bob)、各开一个储蓄账户并做一笔转账。
只用于开发环境联调，不要在生产库执行。`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := connectStore()
		if err != nil {
			fmt.Println(err)
			return
		}

		ctx := context.Background()
		authSvc := auth.NewService(store, cache.NewMemoryCache(time.Hour, time.Hour))
		accountSvc := account.NewService(store)
		txnSvc := transaction.NewService(store)

		users := []struct {
			username, email, fullName, number string
		}{
			{"alice", "alice@example.com", "Alice Example", "1234567890"},
			{"bob", "bob@example.com", "Bob Example", "9876543210"},
		}

		for _, u := range users {
			if _, err := authSvc.Register(ctx, auth.RegisterInput{
				Username:    u.username,
				Password:    "password123",
				Email:       u.email,
				FullName:    u.fullName,
				PhoneNumber: "13800000000",
			}); err != nil {
				fmt.Printf("注册 %s 失败 (可能已存在): %v\n", u.username, err)
				continue
			}
			if _, err := authSvc.Verify(ctx, u.username); err != nil {
				fmt.Printf("验证 %s 失败: %v\n", u.username, err)
				continue
			}
			if _, err := accountSvc.CreateAccount(ctx, u.username, account.CreateAccountInput{
				AccountNumber:  u.number,
				AccountType:    "SAVINGS",
				PIN:            "1234",
				InitialDeposit: decimal.NewFromInt(100),
			}); err != nil {
				fmt.Printf("为 %s 开户失败: %v\n", u.username, err)
				continue
			}
			fmt.Printf("用户 %s 就绪，账户 %s 余额 100.00\n", u.username, u.number)
		}

		if _, _, err := txnSvc.Transfer(ctx, "alice", transaction.TransferInput{
			FromAccountNumber: "1234567890",
			ToAccountNumber:   "9876543210",
			Amount:            decimal.NewFromInt(20),
			PIN:               "1234",
		}); err != nil {
			fmt.Printf("演示转账失败: %v\n", err)
			return
		}
		fmt.Println("演示转账完成: alice -> bob 20.00")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
