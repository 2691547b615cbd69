package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// Config carries what any backend type needs; only the fields of Type are read.
type Config struct {
	Type BackendType

	CSVFilePath  string
	SQLiteDBPath string
	PostgresURL  string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig selects the primary data backend.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromAppConfig(appConfig, appConfig.DataBackend)
}

// MirrorFromAppConfig selects the mirror worker's target backend.
func MirrorFromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromAppConfig(appConfig, appConfig.MirrorBackend)
}

func fromAppConfig(c *config.Config, backend string) (Config, error) {
	bt := BackendType(backend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", backend)
	}
	return Config{
		Type:                     bt,
		CSVFilePath:              c.CSVFilePath,
		SQLiteDBPath:             c.SQLiteDBPath,
		PostgresURL:              c.PostgresURL,
		GoogleSpreadsheetID:      c.GoogleSpreadsheetID,
		GoogleSheetName:          c.GoogleSheetName,
		GoogleServiceAccountJSON: c.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: c.GoogleServiceAccountFile,
	}, nil
}

func (c Config) Validate() error {
	switch c.Type {
	case CSVBackend:
		if c.CSVFilePath == "" {
			return errors.New("CSV file path is required for csv backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			return errors.New("Postgres URL is required for postgres backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
