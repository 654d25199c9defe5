package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "dev",
		Server: ServerConfig{
			Port:            4250,
			Host:            "localhost",
			WriteTimeout:    "60s",
			ShutdownTimeout: "10s",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			SQLite: SQLiteConfig{
				Path: "./data/finplan.db",
			},
			Supabase: SupabaseConfig{
				Table:   "users",
				Timeout: "10s",
			},
			Cache: CacheConfig{
				TTL:        "30s",
				MaxEntries: 500,
			},
		},
		Auth: AuthConfig{
			SessionTTL: "24h",
		},
		Planning: PlanningConfig{
			AssumedRate:      0.12,
			Currency:         "INR",
			DefaultRiskLevel: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/finplan.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
