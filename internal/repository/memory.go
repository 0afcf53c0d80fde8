package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"bank-core/internal/model"
	"bank-core/pkg/errno"
	"bank-core/pkg/txid"
)

// MemoryStore 内存仓储实现。
// 单把互斥锁序列化所有操作，Run 入口做整体快照、出错时回滚，
// 从而提供与数据库事务一致的「全部提交或全部不提交」语义。
// 用于服务层单元测试和 bank-cli seed。
type MemoryStore struct {
	mu sync.Mutex

	users         map[uint64]*model.User
	accounts      map[uint64]*model.Account
	transactions  map[uint64]*model.Transaction
	outbox        map[uint64]*model.OutboxMessage
	nextUserID    uint64
	nextAccountID uint64
	nextTxnID     uint64
	nextMsgID     uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uint64]*model.User),
		accounts:     make(map[uint64]*model.Account),
		transactions: make(map[uint64]*model.Transaction),
		outbox:       make(map[uint64]*model.OutboxMessage),
	}
}

// Run 在互斥锁保护下执行 fn；fn 返回 error 时恢复快照
func (s *MemoryStore) Run(ctx context.Context, fn func(r Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repos(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Repos 返回独立加锁的仓储集合，供事务作用域之外的调用方使用
func (s *MemoryStore) Repos() Repos {
	return s.repos(false)
}

func (s *MemoryStore) repos(inTx bool) Repos {
	return Repos{
		Users:        &memUsers{s: s, inTx: inTx},
		Accounts:     &memAccounts{s: s, inTx: inTx},
		Transactions: &memTransactions{s: s, inTx: inTx},
		Outbox:       &memOutbox{s: s, inTx: inTx},
	}
}

type memSnapshot struct {
	users         map[uint64]*model.User
	accounts      map[uint64]*model.Account
	transactions  map[uint64]*model.Transaction
	outbox        map[uint64]*model.OutboxMessage
	nextUserID    uint64
	nextAccountID uint64
	nextTxnID     uint64
	nextMsgID     uint64
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:         make(map[uint64]*model.User, len(s.users)),
		accounts:      make(map[uint64]*model.Account, len(s.accounts)),
		transactions:  make(map[uint64]*model.Transaction, len(s.transactions)),
		outbox:        make(map[uint64]*model.OutboxMessage, len(s.outbox)),
		nextUserID:    s.nextUserID,
		nextAccountID: s.nextAccountID,
		nextTxnID:     s.nextTxnID,
		nextMsgID:     s.nextMsgID,
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, a := range s.accounts {
		cp := *a
		snap.accounts[id] = &cp
	}
	for id, t := range s.transactions {
		cp := *t
		snap.transactions[id] = &cp
	}
	for id, m := range s.outbox {
		cp := *m
		snap.outbox[id] = &cp
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.accounts = snap.accounts
	s.transactions = snap.transactions
	s.outbox = snap.outbox
	s.nextUserID = snap.nextUserID
	s.nextAccountID = snap.nextAccountID
	s.nextTxnID = snap.nextTxnID
	s.nextMsgID = snap.nextMsgID
}

// lock 仅在非事务模式下加锁；事务模式下 Run 已持有锁
func lock(s *MemoryStore, inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memUsers struct {
	s    *MemoryStore
	inTx bool
}

func (r *memUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	defer lock(r.s, r.inTx)()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errno.ErrUserNotFound
}

func (r *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	defer lock(r.s, r.inTx)()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	defer lock(r.s, r.inTx)()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Save(ctx context.Context, user *model.User) error {
	defer lock(r.s, r.inTx)()
	if user.ID == 0 {
		r.s.nextUserID++
		user.ID = r.s.nextUserID
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

type memAccounts struct {
	s    *MemoryStore
	inTx bool
}

func (r *memAccounts) findLocked(number string) (*model.Account, error) {
	for _, a := range r.s.accounts {
		if a.AccountNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errno.ErrAccountNotFound
}

func (r *memAccounts) FindByAccountNumber(ctx context.Context, number string) (*model.Account, error) {
	defer lock(r.s, r.inTx)()
	return r.findLocked(number)
}

// FindByAccountNumberForUpdate 内存实现下与普通查找等价:
// 整个事务本来就持有全局互斥锁
func (r *memAccounts) FindByAccountNumberForUpdate(ctx context.Context, number string) (*model.Account, error) {
	defer lock(r.s, r.inTx)()
	return r.findLocked(number)
}

func (r *memAccounts) ExistsByAccountNumber(ctx context.Context, number string) (bool, error) {
	defer lock(r.s, r.inTx)()
	for _, a := range r.s.accounts {
		if a.AccountNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccounts) FindActiveByUserID(ctx context.Context, userID uint64) ([]model.Account, error) {
	defer lock(r.s, r.inTx)()
	var accounts []model.Account
	for _, a := range r.s.accounts {
		if a.UserID == userID && a.Active {
			accounts = append(accounts, *a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r *memAccounts) Save(ctx context.Context, account *model.Account) error {
	defer lock(r.s, r.inTx)()
	if account.ID == 0 {
		if _, err := r.findLocked(account.AccountNumber); err == nil {
			return errno.ErrAccountNumberTaken
		}
		r.s.nextAccountID++
		account.ID = r.s.nextAccountID
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now()
		}
	}
	cp := *account
	r.s.accounts[account.ID] = &cp
	return nil
}

type memTransactions struct {
	s    *MemoryStore
	inTx bool
}

func (r *memTransactions) Append(ctx context.Context, txn *model.Transaction) error {
	defer lock(r.s, r.inTx)()
	r.s.nextTxnID++
	txn.ID = r.s.nextTxnID
	if txn.TransactionID == "" {
		txn.TransactionID = txid.New()
	}
	if txn.Timestamp.IsZero() {
		txn.Timestamp = time.Now()
	}
	cp := *txn
	r.s.transactions[txn.ID] = &cp
	return nil
}

func (r *memTransactions) FindByAccountOrderByTimestampDesc(ctx context.Context, accountID uint64) ([]model.Transaction, error) {
	defer lock(r.s, r.inTx)()
	var txns []model.Transaction
	for _, t := range r.s.transactions {
		if t.AccountID == accountID {
			txns = append(txns, *t)
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Timestamp.Equal(txns[j].Timestamp) {
			return txns[i].Timestamp.After(txns[j].Timestamp)
		}
		return txns[i].ID > txns[j].ID
	})
	return txns, nil
}

type memOutbox struct {
	s    *MemoryStore
	inTx bool
}

func (r *memOutbox) Append(ctx context.Context, msg *model.OutboxMessage) error {
	defer lock(r.s, r.inTx)()
	r.s.nextMsgID++
	msg.ID = r.s.nextMsgID
	if msg.Status == "" {
		msg.Status = "PENDING"
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	cp := *msg
	r.s.outbox[msg.ID] = &cp
	return nil
}

func (r *memOutbox) FindPending(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	defer lock(r.s, r.inTx)()
	var messages []model.OutboxMessage
	for _, m := range r.s.outbox {
		if m.Status == "PENDING" {
			messages = append(messages, *m)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (r *memOutbox) MarkSent(ctx context.Context, id uint64) error {
	defer lock(r.s, r.inTx)()
	if m, ok := r.s.outbox[id]; ok {
		m.Status = "SENT"
		m.UpdatedAt = time.Now()
	}
	return nil
}
