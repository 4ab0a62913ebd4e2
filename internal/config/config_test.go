package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missingPort := validConfig()
	missingPort.Server.Port = ""
	assert.Error(t, missingPort.Validate())

	missingDB := validConfig()
	missingDB.Database.DBName = ""
	assert.Error(t, missingDB.Validate())
}

func TestConfigValidationIMAP(t *testing.T) {
	cfg := validConfig()
	cfg.IMAP = IMAPConfig{
		Enabled:  true,
		Host:     "imap.example.com",
		User:     "alerts@example.com",
		Password: "secret",
		OwnerID:  "user-1",
	}
	cfg.Scheduler.IntervalMinutes = 15
	assert.NoError(t, cfg.Validate())

	missingOwner := *cfg
	missingOwner.IMAP.OwnerID = ""
	assert.Error(t, missingOwner.Validate())

	missingCreds := *cfg
	missingCreds.IMAP.Password = ""
	assert.Error(t, missingCreds.Validate())

	badInterval := *cfg
	badInterval.Scheduler.IntervalMinutes = 0
	assert.Error(t, badInterval.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, cfg.GetDSN())
}
