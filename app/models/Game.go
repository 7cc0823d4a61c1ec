package models

import "time"

// Game is the lobby record kept in Postgres. Live rule state lives in the
// snapshot store, keyed by the same id.
type Game struct {
	Id        string     `pg:",pk" json:"id"`
	Name      string     `json:"name"`
	Status    GameStatus `json:"status"`
	Type      string     `json:"type"`
	CreatedAt time.Time  `pg:"default:now()" json:"createdAt"`
}

type GameCreateDto struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type VerifyGameDto struct {
	Code    string `query:"code"`
	User_id string `query:"user_id"`
}

// GameLog archives the log entries emitted by the engine.
type GameLog struct {
	tableName struct{} `pg:"game_logs"`

	Id        int64  `pg:",pk"`
	GameId    string `pg:",notnull"`
	Version   int    `pg:",use_zero"`
	Type      string `pg:",notnull"`
	ActorId   string
	Payload   map[string]interface{} `pg:",type:jsonb"`
	CreatedAt time.Time              `pg:"default:now()"`
}
