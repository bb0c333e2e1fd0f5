package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))

	short := EstimateTokens("hello world")
	assert.Greater(t, short, 0)
	assert.Less(t, short, 10)

	long := EstimateTokens(strings.Repeat("some source code here\n", 100))
	assert.Greater(t, long, short)
}

func TestEstimator_ImplementsPort(t *testing.T) {
	var e Estimator
	assert.Equal(t, EstimateTokens("func main() {}"), e.EstimateTokens("func main() {}"))
}
