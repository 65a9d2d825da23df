package config

const (
	defaultDataDir               = "~/.local/share/aura"
	defaultSettingsFileName      = "settings.json"
	defaultDatabaseFileName      = "aura.db"
	defaultEnvFile               = ".env"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultLLMProvider           = "openai"
	defaultLLMModel              = "gpt-4"
	defaultLLMTemperature        = 0.7
	defaultLLMMaxTokens          = 4000
	defaultGatewayURL            = "http://localhost:8000/reverse-engineer-design"
	defaultGatewayTimeoutSeconds = 120
	defaultGatewayRetryAttempts  = 1
	defaultReverseProvider       = "google"
	defaultReverseModel          = "gemini-2.5-pro"
	defaultMockDelayMS           = 1500
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			EnvFile: defaultEnvFile,
			APIBind: defaultAPIBind,
		},
		LLM: LLM{
			Provider:    defaultLLMProvider,
			Model:       defaultLLMModel,
			Temperature: defaultLLMTemperature,
			MaxTokens:   defaultLLMMaxTokens,
		},
		Gateway: Gateway{
			URL:            defaultGatewayURL,
			TimeoutSeconds: defaultGatewayTimeoutSeconds,
			RetryAttempts:  defaultGatewayRetryAttempts,
		},
		ReverseEngineering: ReverseEngineering{
			DesignProvider: defaultReverseProvider,
			DesignModel:    defaultReverseModel,
			CodeProvider:   defaultReverseProvider,
			CodeModel:      defaultReverseModel,
		},
		Mock: Mock{
			DelayMS: defaultMockDelayMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
