package account

import (
	"context"
	"testing"
	"time"

	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/internal/service/auth"
	"bank-core/pkg/cache"
	"bank-core/pkg/crypto_util"
	"bank-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*repository.MemoryStore, *Service) {
	t.Helper()
	store := repository.NewMemoryStore()
	authSvc := auth.NewService(store, cache.NewMemoryCache(time.Hour, time.Hour))

	ctx := context.Background()
	for _, username := range []string{"alice", "carol"} {
		_, err := authSvc.Register(ctx, auth.RegisterInput{
			Username: username,
			Password: "password123",
			Email:    username + "@example.com",
		})
		require.NoError(t, err)
	}
	// alice 已验证，carol 未验证
	_, err := authSvc.Verify(ctx, "alice")
	require.NoError(t, err)

	return store, NewService(store)
}

func TestCreateAccountWithInitialDeposit(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	acct, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber:  "1234567890",
		AccountType:    model.AccountTypeSavings,
		PIN:            "1234",
		InitialDeposit: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, acct.Active)
	// PIN 只存哈希
	assert.NotEqual(t, "1234", acct.PIN)
	assert.True(t, crypto_util.VerifyPIN(acct.PIN, "1234"))

	// 初始入金要有一条流水
	txns, err := store.Repos().Transactions.FindByAccountOrderByTimestampDesc(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionTypeDeposit, txns[0].Type)
	assert.Equal(t, "Initial deposit", txns[0].Description)
	assert.True(t, txns[0].BalanceAfter.Equal(decimal.NewFromInt(100)))
}

func TestCreateAccountZeroInitialDeposit(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	acct, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeChecking,
		PIN:           "1234",
	})
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero())

	// 0 初始入金不产生流水
	txns, err := store.Repos().Transactions.FindByAccountOrderByTimestampDesc(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestCreateAccountUnverifiedUser(t *testing.T) {
	_, svc := newFixture(t)

	_, err := svc.CreateAccount(context.Background(), "carol", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeSavings,
		PIN:           "1234",
	})
	assert.Equal(t, errno.ErrUserNotVerified, err)
}

func TestCreateAccountNumberTaken(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeSavings,
		PIN:           "1234",
	})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeChecking,
		PIN:           "5678",
	})
	assert.Equal(t, errno.ErrAccountNumberTaken, err)
}

func TestCreateAccountValidation(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateAccountInput
	}{
		{"账号太短", CreateAccountInput{AccountNumber: "123", AccountType: model.AccountTypeSavings, PIN: "1234"}},
		{"账号太长", CreateAccountInput{AccountNumber: "12345678901234567", AccountType: model.AccountTypeSavings, PIN: "1234"}},
		{"非法账户类型", CreateAccountInput{AccountNumber: "1234567890", AccountType: "CRYPTO", PIN: "1234"}},
		{"PIN 太短", CreateAccountInput{AccountNumber: "1234567890", AccountType: model.AccountTypeSavings, PIN: "12"}},
		{"负数初始入金", CreateAccountInput{AccountNumber: "1234567890", AccountType: model.AccountTypeSavings, PIN: "1234", InitialDeposit: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, "alice", tt.in)
			require.Error(t, err)
			assert.Equal(t, errno.ErrValidation.Code, err.(errno.Errno).Code)
		})
	}
}

func TestGetUserAccounts(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	for _, number := range []string{"1234567890", "2234567890"} {
		_, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
			AccountNumber: number,
			AccountType:   model.AccountTypeSavings,
			PIN:           "1234",
		})
		require.NoError(t, err)
	}

	accounts, err := svc.GetUserAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	// 按 id 升序
	assert.Equal(t, "1234567890", accounts[0].AccountNumber)
	assert.Equal(t, "2234567890", accounts[1].AccountNumber)
}

func TestGetAccountByNumberOwnership(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeSavings,
		PIN:           "1234",
	})
	require.NoError(t, err)

	acct, err := svc.GetAccountByNumber(ctx, "1234567890", "alice")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", acct.AccountNumber)

	// 非属主
	_, err = svc.GetAccountByNumber(ctx, "1234567890", "carol")
	assert.Equal(t, errno.ErrUnauthorized, err)

	// 不存在
	_, err = svc.GetAccountByNumber(ctx, "0000000000", "alice")
	assert.Equal(t, errno.ErrAccountNotFound, err)
}

func TestDeleteAccount(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber:  "1234567890",
		AccountType:    model.AccountTypeSavings,
		PIN:            "1234",
		InitialDeposit: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// 余额非零不能注销
	_, err = svc.DeleteAccount(ctx, "1234567890", "alice")
	assert.Equal(t, errno.ErrNonZeroBalance, err)
}

func TestDeleteAccountSoftDelete(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeSavings,
		PIN:           "1234",
	})
	require.NoError(t, err)

	msg, err := svc.DeleteAccount(ctx, "1234567890", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Account deactivated successfully", msg)

	// 列表里不再出现
	accounts, err := svc.GetUserAccounts(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	// 但属主直查仍可见 (历史查询入口)
	acct, err := svc.GetAccountByNumber(ctx, "1234567890", "alice")
	require.NoError(t, err)
	assert.False(t, acct.Active)

	// 软删除后账号依然占用，不可复用
	_, err = svc.CreateAccount(ctx, "alice", CreateAccountInput{
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeChecking,
		PIN:           "5678",
	})
	assert.Equal(t, errno.ErrAccountNumberTaken, err)
}
