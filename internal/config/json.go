package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the optional JSON config
// file.
type StructuredJSONConfig struct {
	App struct {
		LogFile string `json:"log_file"`
	} `json:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Stub struct {
		Enabled       bool     `json:"enabled"`
		Code          string   `json:"code"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenDuration Duration `json:"token_duration"`
	} `json:"stub,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		SealSecret string `json:"seal_secret"`
		Ephemeral  bool   `json:"ephemeral"`
	} `json:"storage,omitempty"`

	Sync struct {
		SendAttempts    int      `json:"send_attempts"`
		SendBackoff     Duration `json:"send_backoff"`
		RefreshInterval Duration `json:"refresh_interval"`
		ChallengeTTL    Duration `json:"challenge_ttl"`
	} `json:"sync,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			LogFile: jsonCfg.App.LogFile,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Stub: Stub{
			Enabled:       jsonCfg.Stub.Enabled,
			Code:          jsonCfg.Stub.Code,
			TokenSignKey:  jsonCfg.Stub.TokenSignKey,
			TokenDuration: time.Duration(jsonCfg.Stub.TokenDuration),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			SealSecret: jsonCfg.Storage.SealSecret,
			Ephemeral:  jsonCfg.Storage.Ephemeral,
		},
		Sync: Sync{
			SendAttempts:    jsonCfg.Sync.SendAttempts,
			SendBackoff:     time.Duration(jsonCfg.Sync.SendBackoff),
			RefreshInterval: time.Duration(jsonCfg.Sync.RefreshInterval),
			ChallengeTTL:    time.Duration(jsonCfg.Sync.ChallengeTTL),
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
