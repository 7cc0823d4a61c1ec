package models

import "time"

type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeRejected  TradeStatus = "REJECTED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// Trade is an offer from FromID to ToID. Property lists hold tile indices.
type Trade struct {
	Id             string      `pg:",pk" json:"id"`
	GameId         string      `pg:",notnull" json:"gameId"`
	FromID         string      `pg:"from_id" json:"fromId"`
	ToID           string      `pg:"to_id" json:"toId"`
	CashFrom       int         `pg:",use_zero" json:"cashFrom"`
	CashTo         int         `pg:",use_zero" json:"cashTo"`
	FromProperties []int       `pg:",array" json:"fromProperties"`
	ToProperties   []int       `pg:",array" json:"toProperties"`
	Status         TradeStatus `json:"status"`
	CreatedAt      time.Time   `pg:"default:now()" json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
