package probe

import (
	"crypto/rand"
	"math/big"

	"github.com/okian/segview/internal/domain/segment"
)

// Sample ranges accepted by the backend.
const (
	incomeMax      = 200
	spendingMin    = 1
	spendingMax    = 100
	incomeDecimals = 10
)

// randInt returns a uniform integer in [0, n).
func randInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// generateRequests builds n requests spread over the accepted ranges. Income
// carries one decimal place.
func generateRequests(n int) []segment.PredictionRequest {
	out := make([]segment.PredictionRequest, n)
	for i := range out {
		out[i] = segment.PredictionRequest{
			AnnualIncome:  float64(randInt(incomeMax*incomeDecimals+1)) / incomeDecimals,
			SpendingScore: spendingMin + int(randInt(spendingMax-spendingMin+1)),
		}
	}
	return out
}
