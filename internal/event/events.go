package event

// Topic 常量: outbox -> MQ 的投递主题
const (
	TopicTransactions = "bank_events_transaction"
)

// TransactionRecordedEvent 交易落库事件
// Topic: bank_events_transaction, Key: 账号 (保证同一账户的事件有序)
type TransactionRecordedEvent struct {
	TransactionID        string `json:"transaction_id"`
	Type                 string `json:"type"`
	AccountNumber        string `json:"account_number"`
	RelatedAccountNumber string `json:"related_account_number,omitempty"`
	Amount               string `json:"amount"`        // Decimal string
	BalanceAfter         string `json:"balance_after"` // Decimal string
	Timestamp            int64  `json:"timestamp"`     // Unix millis
}
