package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"

	"github.com/DedS3t/monopoly-engine/app/models"
)

const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBAddr     string `env:"DB_ADDR" envDefault:"localhost:5432"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"monopoly"`

	RedisURL    string `env:"REDIS_URL" envDefault:"localhost:6379"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"redis"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"monopoly.db"`

	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":4101"`
	SocketAddr     string   `env:"SOCKET_ADDR" envDefault:":8000"`
	JWTSecret      string   `env:"JWT_SECRET" envDefault:"secret"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	Game GameDefaults
}

// GameDefaults seed the settings of every new game.
type GameDefaults struct {
	StartingCash     int     `env:"DEFAULT_STARTING_CASH" envDefault:"1500"`
	HouseLimit       int     `env:"DEFAULT_HOUSE_LIMIT" envDefault:"32"`
	HotelLimit       int     `env:"DEFAULT_HOTEL_LIMIT" envDefault:"12"`
	FreeParking      string  `env:"DEFAULT_FREE_PARKING" envDefault:"taxes"`
	AuctionOnNoBuy   bool    `env:"DEFAULT_AUCTION_ON_NO_BUY" envDefault:"true"`
	JailFine         int     `env:"DEFAULT_JAIL_FINE" envDefault:"50"`
	MortgageInterest float64 `env:"DEFAULT_MORTGAGE_INTEREST" envDefault:"0.1"`
	ManualEndTurn    bool    `env:"MANUAL_END_TURN" envDefault:"true"`
}

// Load reads the environment, after .env has been autoloaded.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverRedis, DriverSQLite, c.StoreDriver)
	}
	switch models.FreeParkingRule(strings.ToLower(c.Game.FreeParking)) {
	case models.FreeParkingNone, models.FreeParkingTaxes, models.FreeParkingFines:
	default:
		return fmt.Errorf("DEFAULT_FREE_PARKING: unknown rule %q", c.Game.FreeParking)
	}
	return nil
}

func (g GameDefaults) Settings() models.Settings {
	return models.Settings{
		StartingCash:     g.StartingCash,
		HouseLimit:       g.HouseLimit,
		HotelLimit:       g.HotelLimit,
		FreeParkingRule:  models.FreeParkingRule(strings.ToLower(g.FreeParking)),
		AuctionOnNoBuy:   g.AuctionOnNoBuy,
		JailFine:         g.JailFine,
		MortgageInterest: g.MortgageInterest,
		ManualEndTurn:    g.ManualEndTurn,
	}
}
