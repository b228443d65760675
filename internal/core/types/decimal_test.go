package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.True(t, MustMoney("10000").Equal(LineTotal(MoneyFromInt(1000), 10)))
	assert.True(t, MustMoney("37.5").Equal(LineTotal(MustMoney("12.5"), 3)))
	assert.True(t, Zero().Equal(LineTotal(MustMoney("12.5"), 0)))
}

func TestSum(t *testing.T) {
	assert.True(t, MustMoney("0.3").Equal(Sum(MustMoney("0.1"), MustMoney("0.2"))))
	assert.True(t, Zero().Equal(Sum()))
}
