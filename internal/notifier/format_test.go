package notifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

func posInf() float64 { return math.Inf(1) }

type FormatTestSuite struct {
	suite.Suite
}

func TestFormatSuite(t *testing.T) {
	suite.Run(t, new(FormatTestSuite))
}

func (suite *FormatTestSuite) TestMoney() {
	suite.Equal("$0.00", money(0))
	suite.Equal("$1,234,567.89", money(1234567.891))
	suite.Equal("-$12.30", money(-12.3))
}

func (suite *FormatTestSuite) TestRatio() {
	suite.Equal("inf", ratio(posInf()))
	suite.Equal("2.00", ratio(2))
	suite.Equal("nan", ratio(math.NaN()))
}

func (suite *FormatTestSuite) TestQuantity() {
	suite.Equal("50", quantity(50))
	suite.Equal("0.125", quantity(0.125))
}
