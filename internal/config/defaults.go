package config

const (
	defaultDataDir         = "~/.local/share/labelspool"
	defaultLogDir          = "~/.local/share/labelspool/logs"
	defaultAPIBind         = "127.0.0.1:8082"
	defaultSourceBaseURL   = "https://api.baselinker.com/connector.php"
	defaultSourceStatusID  = 91618
	defaultSourceTimeout   = 15
	defaultSourcePerMinute = 60
	defaultPrinterName     = "Xprinter"
	defaultNotifyTimeout   = 10
	defaultPollInterval    = 60
	defaultQuietHoursStart = 10
	defaultQuietHoursEnd   = 22
	defaultExpiryDays      = 5
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Source: Source{
			BaseURL:           defaultSourceBaseURL,
			StatusID:          defaultSourceStatusID,
			RequestTimeout:    defaultSourceTimeout,
			RequestsPerMinute: defaultSourcePerMinute,
		},
		Printer: Printer{
			Name: defaultPrinterName,
		},
		Notify: Notify{
			RequestTimeout: defaultNotifyTimeout,
		},
		Agent: Agent{
			PollInterval:    defaultPollInterval,
			QuietHoursStart: defaultQuietHoursStart,
			QuietHoursEnd:   defaultQuietHoursEnd,
			ExpiryDays:      defaultExpiryDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
