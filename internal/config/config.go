package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	KakaoConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Kakao
}

func New() Config {
	return mainConfig{}
}
