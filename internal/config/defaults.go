package config

const (
	defaultConfigPath           = "~/.config/movieconv/config.toml"
	defaultDataDir              = "~/.local/share/movieconv"
	defaultLogDir               = "~/.local/share/movieconv/logs"
	defaultProbeCommand         = "nvidia-smi"
	defaultProbeTimeoutSeconds  = 5
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Encoder: Encoder{
			HardwareProbeCommand: defaultProbeCommand,
			HardwareProbeTimeout: defaultProbeTimeoutSeconds,
		},
		Notifications: Notifications{
			Bell:           true,
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
