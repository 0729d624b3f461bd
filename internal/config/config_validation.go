// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"strings"
)

// validate checks that the client configuration can start the runtime.
// Every failing group contributes its sentinel to the joined error.
func (cfg *ClientConfig) validate() error {
	var errs []error

	if !cfg.Storage.Ephemeral {
		if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
			errs = append(errs, ErrInvalidStorageConfigs)
		}
	}

	if cfg.Adapter.RequestTimeout <= 0 || (!cfg.Stub.Enabled && cfg.Adapter.HTTPAddress == "") {
		errs = append(errs, ErrInvalidAdapterConfigs)
	}

	if cfg.Stub.Enabled && cfg.Stub.TokenSignKey == "" {
		errs = append(errs, ErrInvalidStubConfigs)
	}

	if cfg.Sync.SendAttempts < 1 || cfg.Sync.SendBackoff < 0 || cfg.Sync.RefreshInterval < 0 || cfg.Session.ChallengeTTL < 0 {
		errs = append(errs, ErrInvalidSyncConfigs)
	}

	return errors.Join(errs...)
}

func (cfg *DevServerConfig) validate() error {
	var errs []error

	if cfg.HTTPAddress == "" || cfg.RequestTimeout <= 0 {
		errs = append(errs, ErrInvalidServerConfigs)
	}

	if cfg.Stub.TokenSignKey == "" {
		errs = append(errs, ErrInvalidStubConfigs)
	}

	return errors.Join(errs...)
}
