package transaction

import (
	"context"
	"testing"
	"time"

	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/internal/service/account"
	"bank-core/internal/service/auth"
	"bank-core/pkg/cache"
	"bank-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFixture 准备一套联调数据:
// alice (1234567890, PIN 1234) 和 bob (9876543210, PIN 5678)，各 100.00
func newFixture(t *testing.T) (*repository.MemoryStore, *Service) {
	t.Helper()
	store := repository.NewMemoryStore()
	authSvc := auth.NewService(store, cache.NewMemoryCache(time.Hour, time.Hour))
	accountSvc := account.NewService(store)

	ctx := context.Background()
	users := []struct {
		username, email, number, pin string
	}{
		{"alice", "alice@example.com", "1234567890", "1234"},
		{"bob", "bob@example.com", "9876543210", "5678"},
	}
	for _, u := range users {
		_, err := authSvc.Register(ctx, auth.RegisterInput{
			Username: u.username,
			Password: "password123",
			Email:    u.email,
			FullName: u.username,
		})
		require.NoError(t, err)
		_, err = authSvc.Verify(ctx, u.username)
		require.NoError(t, err)
		_, err = accountSvc.CreateAccount(ctx, u.username, account.CreateAccountInput{
			AccountNumber:  u.number,
			AccountType:    model.AccountTypeSavings,
			PIN:            u.pin,
			InitialDeposit: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}
	return store, NewService(store)
}

func balanceOf(t *testing.T, store *repository.MemoryStore, number string) decimal.Decimal {
	t.Helper()
	acct, err := store.Repos().Accounts.FindByAccountNumber(context.Background(), number)
	require.NoError(t, err)
	return acct.Balance
}

func historyOf(t *testing.T, store *repository.MemoryStore, number string) []model.Transaction {
	t.Helper()
	ctx := context.Background()
	acct, err := store.Repos().Accounts.FindByAccountNumber(ctx, number)
	require.NoError(t, err)
	txns, err := store.Repos().Transactions.FindByAccountOrderByTimestampDesc(ctx, acct.ID)
	require.NoError(t, err)
	return txns
}

func TestDeposit(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	txn, err := svc.Deposit(ctx, "alice", DepositInput{
		AccountNumber: "1234567890",
		Amount:        decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.RequireFromString("150")))
	assert.Equal(t, model.TransactionTypeDeposit, txn.Type)
	assert.True(t, txn.BalanceAfter.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, "Deposit", txn.Description)
	assert.NotEmpty(t, txn.TransactionID)
}

func TestDepositZeroAmount(t *testing.T) {
	store, svc := newFixture(t)

	_, err := svc.Deposit(context.Background(), "alice", DepositInput{
		AccountNumber: "1234567890",
		Amount:        decimal.Zero,
	})
	require.Error(t, err)
	assert.Equal(t, errno.ErrValidation.Code, err.(errno.Errno).Code)
	// 余额不变，无流水追加
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
	assert.Len(t, historyOf(t, store, "1234567890"), 1)
}

func TestWithdraw(t *testing.T) {
	store, svc := newFixture(t)

	txn, err := svc.Withdraw(context.Background(), "alice", WithdrawInput{
		AccountNumber: "1234567890",
		Amount:        decimal.RequireFromString("30"),
		PIN:           "1234",
	})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(70)))
	assert.Equal(t, model.TransactionTypeWithdrawal, txn.Type)
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(70)))
}

func TestWithdrawWrongPin(t *testing.T) {
	store, svc := newFixture(t)

	_, err := svc.Withdraw(context.Background(), "alice", WithdrawInput{
		AccountNumber: "1234567890",
		Amount:        decimal.NewFromInt(30),
		PIN:           "9999",
	})
	assert.Equal(t, errno.ErrInvalidPin, err)
	// PIN 错误时余额必须原样
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
	assert.Len(t, historyOf(t, store, "1234567890"), 1)
}

// 余额恰好等于取款额时允许取空
func TestWithdrawExactBalance(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, "alice", WithdrawInput{
		AccountNumber: "1234567890",
		Amount:        decimal.NewFromInt(100),
		PIN:           "1234",
	})
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, "1234567890").IsZero())
}

func TestWithdrawInsufficientByOneCent(t *testing.T) {
	store, svc := newFixture(t)

	_, err := svc.Withdraw(context.Background(), "alice", WithdrawInput{
		AccountNumber: "1234567890",
		Amount:        decimal.RequireFromString("100.01"),
		PIN:           "1234",
	})
	assert.Equal(t, errno.ErrInsufficientFunds, err)
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
}

func TestTransfer(t *testing.T) {
	store, svc := newFixture(t)

	debit, credit, err := svc.Transfer(context.Background(), "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(20),
		PIN:               "1234",
	})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(80)))
	assert.True(t, balanceOf(t, store, "9876543210").Equal(decimal.NewFromInt(120)))
	// 转账前后两账户总额不变
	total := balanceOf(t, store, "1234567890").Add(balanceOf(t, store, "9876543210"))
	assert.True(t, total.Equal(decimal.NewFromInt(200)))

	// 镜像流水对
	assert.Equal(t, model.TransactionTypeTransferOut, debit.Type)
	assert.Equal(t, model.TransactionTypeTransferIn, credit.Type)
	assert.True(t, debit.Amount.Equal(credit.Amount))
	assert.Equal(t, "9876543210", debit.RelatedAccountNumber)
	assert.Equal(t, "1234567890", credit.RelatedAccountNumber)
	assert.Equal(t, "Transfer to 9876543210", debit.Description)
	assert.Equal(t, "Transfer from 1234567890", credit.Description)
	assert.True(t, debit.BalanceAfter.Equal(decimal.NewFromInt(80)))
	assert.True(t, credit.BalanceAfter.Equal(decimal.NewFromInt(120)))
	assert.NotEqual(t, debit.TransactionID, credit.TransactionID)
}

func TestTransferInsufficientFunds(t *testing.T) {
	store, svc := newFixture(t)

	_, _, err := svc.Transfer(context.Background(), "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(500),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrInsufficientFunds, err)

	// 两边都不能有任何变化
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
	assert.True(t, balanceOf(t, store, "9876543210").Equal(decimal.NewFromInt(100)))
	assert.Len(t, historyOf(t, store, "1234567890"), 1)
	assert.Len(t, historyOf(t, store, "9876543210"), 1)
}

func TestTransferToSelf(t *testing.T) {
	store, svc := newFixture(t)

	_, _, err := svc.Transfer(context.Background(), "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "1234567890",
		Amount:            decimal.NewFromInt(10),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrSameAccount, err)
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
}

func TestTransferPreconditionOrder(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	// 源账户不存在
	_, _, err := svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "0000000000",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(10),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrSourceAccountNotFound, err)

	// 源账户不属于调用者
	_, _, err = svc.Transfer(ctx, "bob", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(10),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrUnauthorized, err)

	// PIN 校验先于目标账户存在性: 目标不存在且 PIN 错，报 PIN 错
	_, _, err = svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "0000000000",
		Amount:            decimal.NewFromInt(10),
		PIN:               "9999",
	})
	assert.Equal(t, errno.ErrInvalidPin, err)

	// PIN 对、目标不存在
	_, _, err = svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "0000000000",
		Amount:            decimal.NewFromInt(10),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrDestinationAccountNotFound, err)
}

func TestTransferToInactiveAccount(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	// 把 bob 的账户取空并注销
	_, err := svc.Withdraw(ctx, "bob", WithdrawInput{
		AccountNumber: "9876543210",
		Amount:        decimal.NewFromInt(100),
		PIN:           "5678",
	})
	require.NoError(t, err)
	accountSvc := account.NewService(store)
	_, err = accountSvc.DeleteAccount(ctx, "9876543210", "bob")
	require.NoError(t, err)

	_, _, err = svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(10),
		PIN:               "1234",
	})
	assert.Equal(t, errno.ErrAccountInactive, err)
	assert.True(t, balanceOf(t, store, "1234567890").Equal(decimal.NewFromInt(100)))
}

func TestGetAccountTransactions(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", DepositInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, "alice", WithdrawInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(30), PIN: "1234"})
	require.NoError(t, err)

	txns, err := svc.GetAccountTransactions(ctx, "1234567890", "alice")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// 时间倒序: 取款 -> 存款 -> 初始入金
	assert.Equal(t, model.TransactionTypeWithdrawal, txns[0].Type)
	assert.Equal(t, model.TransactionTypeDeposit, txns[1].Type)
	assert.Equal(t, "Initial deposit", txns[2].Description)
	for i := 0; i < len(txns)-1; i++ {
		assert.False(t, txns[i].Timestamp.Before(txns[i+1].Timestamp))
	}

	// 非属主不可见
	_, err = svc.GetAccountTransactions(ctx, "1234567890", "bob")
	assert.Equal(t, errno.ErrUnauthorized, err)
}

// 账本对账: 每条流水的 BalanceAfter 必须与按时间回放的结果一致
func TestLedgerReconciliation(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", DepositInput{AccountNumber: "1234567890", Amount: decimal.RequireFromString("25.50")})
	require.NoError(t, err)
	_, _, err = svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.RequireFromString("40.25"),
		PIN:               "1234",
	})
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, "alice", WithdrawInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(10), PIN: "1234"})
	require.NoError(t, err)

	txns := historyOf(t, store, "1234567890")
	running := decimal.Zero
	for i := len(txns) - 1; i >= 0; i-- { // 按时间正序回放
		switch txns[i].Type {
		case model.TransactionTypeDeposit, model.TransactionTypeTransferIn:
			running = running.Add(txns[i].Amount)
		case model.TransactionTypeWithdrawal, model.TransactionTypeTransferOut:
			running = running.Sub(txns[i].Amount)
		}
		assert.True(t, running.Equal(txns[i].BalanceAfter),
			"流水 %s 后余额应为 %s, 实际 %s", txns[i].TransactionID, running, txns[i].BalanceAfter)
	}
	assert.True(t, running.Equal(balanceOf(t, store, "1234567890")))

	// 转账不改变系统总额；总额只随存取款变动:
	// 100 + 100 + 25.50 (存) - 10 (取) = 215.50
	total := balanceOf(t, store, "1234567890").Add(balanceOf(t, store, "9876543210"))
	assert.True(t, total.Equal(decimal.RequireFromString("215.50")), "system total = %s", total)
}

// 每笔成功交易都要在同一事务内写 outbox 事件
func TestOutboxAppended(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", DepositInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	_, _, err = svc.Transfer(ctx, "alice", TransferInput{
		FromAccountNumber: "1234567890",
		ToAccountNumber:   "9876543210",
		Amount:            decimal.NewFromInt(20),
		PIN:               "1234",
	})
	require.NoError(t, err)

	pending, err := store.Repos().Outbox.FindPending(ctx, 0)
	require.NoError(t, err)
	// 存款 1 条 + 转账 2 条 (借记方和贷记方各一条)
	assert.Len(t, pending, 3)
	for _, msg := range pending {
		assert.Equal(t, "bank_events_transaction", msg.Topic)
		assert.NotEmpty(t, msg.Payload)
	}

	// 失败的交易不产生事件
	_, err = svc.Withdraw(ctx, "alice", WithdrawInput{
		AccountNumber: "1234567890",
		Amount:        decimal.NewFromInt(99999),
		PIN:           "1234",
	})
	require.Error(t, err)
	after, err := store.Repos().Outbox.FindPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, after, 3)
}

func TestDepositToInactiveAccount(t *testing.T) {
	store, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, "alice", WithdrawInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(100), PIN: "1234"})
	require.NoError(t, err)
	_, err = account.NewService(store).DeleteAccount(ctx, "1234567890", "alice")
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, "alice", DepositInput{AccountNumber: "1234567890", Amount: decimal.NewFromInt(10)})
	assert.Equal(t, errno.ErrAccountInactive, err)
}
