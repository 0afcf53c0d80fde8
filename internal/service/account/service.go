package account

import (
	"context"
	"time"

	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/pkg/crypto_util"
	"bank-core/pkg/errno"

	"github.com/shopspring/decimal"
)

// CreateAccountInput 开户参数
type CreateAccountInput struct {
	AccountNumber  string
	AccountType    model.AccountType
	PIN            string
	InitialDeposit decimal.Decimal // 允许为 0
}

type Service struct {
	scope repository.TxScope
}

func NewService(scope repository.TxScope) *Service {
	return &Service{scope: scope}
}

// CreateAccount 开户。
// 前置条件: 用户存在且已验证，账号未被占用 (包含已注销账户)。
// initialDeposit > 0 时在同一事务内追加一条 "Initial deposit" 流水。
func (s *Service) CreateAccount(ctx context.Context, username string, in CreateAccountInput) (*model.Account, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	pinHash, err := crypto_util.HashPIN(in.PIN)
	if err != nil {
		return nil, errno.InternalServerError.WithMessage(err.Error())
	}

	var account *model.Account
	err = s.scope.Run(ctx, func(r repository.Repos) error {
		user, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if !user.Verified {
			return errno.ErrUserNotVerified
		}

		taken, err := r.Accounts.ExistsByAccountNumber(ctx, in.AccountNumber)
		if err != nil {
			return err
		}
		if taken {
			return errno.ErrAccountNumberTaken
		}

		account = &model.Account{
			AccountNumber: in.AccountNumber,
			AccountType:   in.AccountType,
			Balance:       in.InitialDeposit,
			PIN:           pinHash,
			Active:        true,
			CreatedAt:     time.Now(),
			UserID:        user.ID,
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}

		// 初始入金为 0 时不产生流水
		if in.InitialDeposit.IsPositive() {
			txn := &model.Transaction{
				Type:         model.TransactionTypeDeposit,
				Amount:       in.InitialDeposit,
				BalanceAfter: account.Balance,
				Timestamp:    time.Now(),
				Description:  "Initial deposit",
				AccountID:    account.ID,
				Status:       model.TransactionStatusSuccess,
			}
			if err := r.Transactions.Append(ctx, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetUserAccounts 返回用户所有 active 账户，按 id 升序。
// 已注销账户不出现在列表里 (但 GetAccountByNumber 仍可查到)。
func (s *Service) GetUserAccounts(ctx context.Context, username string) ([]model.Account, error) {
	var accounts []model.Account
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		user, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		accounts, err = r.Accounts.FindActiveByUserID(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccountByNumber 按账号查询，要求调用者是账户属主。
// 注意: 与列表不同，这里不过滤 active，属主可以直查已注销账户。
func (s *Service) GetAccountByNumber(ctx context.Context, accountNumber, username string) (*model.Account, error) {
	var account *model.Account
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		var err error
		account, err = findOwnedAccount(ctx, r, accountNumber, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount 软删除: 要求余额为 0，置 active = false。
// 账号保持全局唯一占用，不可复用。
func (s *Service) DeleteAccount(ctx context.Context, accountNumber, username string) (string, error) {
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		account, err := findOwnedAccount(ctx, r, accountNumber, username)
		if err != nil {
			return err
		}
		if account.Balance.IsPositive() {
			return errno.ErrNonZeroBalance
		}
		account.Active = false
		return r.Accounts.Save(ctx, account)
	})
	if err != nil {
		return "", err
	}
	return "Account deactivated successfully", nil
}

// findOwnedAccount 查账户并校验属主
func findOwnedAccount(ctx context.Context, r repository.Repos, accountNumber, username string) (*model.Account, error) {
	account, err := r.Accounts.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	user, err := r.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account.UserID != user.ID {
		return nil, errno.ErrUnauthorized
	}
	return account, nil
}

func validateInput(in CreateAccountInput) error {
	if l := len(in.AccountNumber); l < 10 || l > 16 {
		return errno.ErrValidation.WithMessage("Account number must be between 10-16 characters")
	}
	if !in.AccountType.Valid() {
		return errno.ErrValidation.WithMessage("Invalid account type")
	}
	if l := len(in.PIN); l < 4 || l > 6 {
		return errno.ErrValidation.WithMessage("PIN must be 4-6 characters")
	}
	if in.InitialDeposit.IsNegative() {
		return errno.ErrValidation.WithMessage("Initial deposit cannot be negative")
	}
	return nil
}
