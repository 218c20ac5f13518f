//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package config

import (
	"fmt"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// mergeLegacyFile reads an INI file laid out like dwh.cfg:
//
//	[CLUSTER]  HOST DB_NAME DB_USER DB_PASSWORD DB_PORT
//	[IAM_ROLE] ARN
//	[S3]       LOG_DATA LOG_JSONPATH SONG_DATA
//	[REGION]   REGION
//
// Sections become nested keys (s3.log_data); keys outside any section are
// top-level.
func mergeLegacyFile(v *viper.Viper, path string) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	settings := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}

		values := make(map[string]any, len(keys))
		for _, key := range keys {
			values[strings.ToLower(key.Name())] = key.Value()
		}

		if section.Name() == ini.DefaultSection {
			for k, val := range values {
				settings[k] = val
			}
			continue
		}
		settings[strings.ToLower(section.Name())] = values
	}

	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	return nil
}
