// Package txid 生成人类可读的交易流水号。
// 格式: "TXN" + 毫秒时间戳 + 6 位随机数字，时间前缀保证按创建顺序可读，
// 随机后缀来自 crypto/rand；最终唯一性由数据库唯一索引兜底。
package txid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	prefix      = "TXN"
	suffixSpace = 1000000 // 6 位数字后缀
)

// New 返回一个新的交易流水号，例如 "TXN1756600000000042137"
func New() string {
	n, err := rand.Int(rand.Reader, big.NewInt(suffixSpace))
	if err != nil {
		// crypto/rand 只有在系统随机源不可用时才失败，此时退化为纯时间戳
		return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s%d%06d", prefix, time.Now().UnixMilli(), n.Int64())
}
