package database

import (
	"context"
	"fmt"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/config"
)

func PostgreSQLConnection(c config.Config) *pg.DB {
	return pg.Connect(&pg.Options{
		User:     c.DBUser,
		Addr:     c.DBAddr,
		Password: c.DBPassword,
		Database: c.DBName,
	})
}

// tables lists every model persisted in Postgres, in creation order.
var tables = []interface{}{
	(*models.User)(nil),
	(*models.Game)(nil),
	(*models.Player)(nil),
	(*models.GameLog)(nil),
	(*models.Trade)(nil),
}

// CreateSchema creates missing tables. Existing tables are left alone.
func CreateSchema(ctx context.Context, db *pg.DB) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	for _, model := range tables {
		err := db.Model(model).CreateTable(&orm.CreateTableOptions{IfNotExists: true})
		if err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}
