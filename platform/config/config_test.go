package config

import (
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DEFAULT_FREE_PARKING", "fines")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.StoreDriver != DriverSQLite || len(c.AllowedOrigins) != 2 {
		t.Fatalf("config = %+v", c)
	}
	s := c.Game.Settings()
	if s.FreeParkingRule != models.FreeParkingFines || s.StartingCash != 1500 || s.MortgageInterest != 0.1 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "etcd")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error")
	}
}
