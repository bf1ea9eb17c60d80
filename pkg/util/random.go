package util

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// 공개 식별자 접두어
const (
	QuoteIDPrefix    = "Q"
	ResponseIDPrefix = "RESP"
	ReferralIDPrefix = "REF"
)

const publicIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GeneratePublicID returns prefix + unix millis + a random base36 suffix,
// e.g. Q1718000000000k3f9x2.
// 충돌 시 unique index 에서 걸러짐
func GeneratePublicID(prefix string) string {
	return prefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + randomSuffix(6)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(publicIDAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 실패 시 시간 기반으로 대체
			buf[i] = publicIDAlphabet[time.Now().UnixNano()%int64(len(publicIDAlphabet))]
			continue
		}
		buf[i] = publicIDAlphabet[idx.Int64()]
	}
	return string(buf)
}
