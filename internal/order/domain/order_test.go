package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanUpdate(t *testing.T) {
	cases := map[OrderStatus]bool{
		StatusNew:             true,
		StatusPendingBroker:   true,
		StatusPartiallyFilled: false,
		StatusFilled:          false,
		StatusCanceled:        false,
		StatusRejected:        false,
		StatusExpired:         false,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.CanUpdate(), "status=%s", status)
	}
}

func TestOrderStatusCanCancel(t *testing.T) {
	cases := map[OrderStatus]bool{
		StatusNew:             true,
		StatusPendingBroker:   true,
		StatusPartiallyFilled: true,
		StatusFilled:          false,
		StatusCanceled:        false,
		StatusRejected:        false,
		StatusExpired:         false,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.CanCancel(), "status=%s", status)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, SideBuy.Valid())
	assert.True(t, SideSell.Valid())
	assert.False(t, OrderSide("hold").Valid())

	assert.True(t, TypeStopLimit.Valid())
	assert.False(t, OrderType("trailing").Valid())

	assert.True(t, TIFGTC.Valid())
	assert.False(t, TimeInForce("gtd").Valid())
	assert.True(t, TIFFOK.Immediate())
	assert.True(t, TIFIOC.Immediate())
	assert.False(t, TIFDay.Immediate())

	assert.True(t, BrokerPaper.Valid())
	assert.False(t, Broker("robinhood").Valid())

	assert.False(t, OrderStatus("unknown").Valid())
	assert.False(t, OrderStatus("unknown").CanUpdate())
	assert.False(t, OrderStatus("unknown").CanCancel())
}

func TestOrderQueryNormalizeDefaults(t *testing.T) {
	q := OrderQuery{}
	assert.NoError(t, q.Normalize())
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, "created_at", q.OrderBy)
	assert.Equal(t, "desc", q.OrderDir)
}

func TestOrderQueryNormalizeRejectsBadInput(t *testing.T) {
	q := OrderQuery{Limit: 201}
	assert.Error(t, q.Normalize())

	q = OrderQuery{Offset: -1}
	assert.Error(t, q.Normalize())

	q = OrderQuery{OrderBy: "broker_order_id"}
	assert.Error(t, q.Normalize())

	q = OrderQuery{OrderDir: "sideways"}
	assert.Error(t, q.Normalize())

	bad := OrderStatus("unknown")
	q = OrderQuery{Status: &bad}
	assert.Error(t, q.Normalize())
}
