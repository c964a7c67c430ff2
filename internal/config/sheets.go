package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/punchclock/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or PUNCH_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	return LoadSheetsConfigFrom(viper.GetViper())
}

// LoadSheetsConfigFrom is LoadSheetsConfig for an explicit viper instance.
func LoadSheetsConfigFrom(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if p := v.GetString("sheets.service_account_path"); p != "" {
		config.ServiceAccountPath = ExpandPath(p)
	}
	if p := v.GetString("sheets.token_file"); p != "" {
		config.TokenFile = ExpandPath(p)
	}
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		config.TimeZone = tz
	}
	if v.IsSet("sheets.formatting") {
		config.EnableFormatting = v.GetBool("sheets.formatting")
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)
	config.TokenFile = ExpandPath(config.TokenFile)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
