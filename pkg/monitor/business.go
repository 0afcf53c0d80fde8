package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	UserRegisteredTotal    prometheus.Counter
	AccountCreatedTotal    *prometheus.CounterVec
	TransactionsTotal      *prometheus.CounterVec
	TransactionAmountTotal *prometheus.CounterVec
	TransactionEventsTotal *prometheus.CounterVec
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		UserRegisteredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bank_user_registered_total",
			Help: "The total number of registered users",
		}),
		AccountCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_account_created_total",
			Help: "The total number of accounts opened",
		}, []string{"account_type"}),
		TransactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_transactions_total",
			Help: "The total number of committed ledger transactions",
		}, []string{"type"}),
		TransactionAmountTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_transaction_amount_total",
			Help: "The total amount moved, by transaction type",
		}, []string{"type"}),
		TransactionEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_transaction_events_total",
			Help: "The total number of transaction events consumed from MQ",
		}, []string{"type"}),
	}
}
