package config

import "os"

// Config gathers every env-backed setting. godotenv is loaded by main
// before this runs; nothing here touches the environment afterwards.
type Config struct {
	Port      string
	BuildMode string
	SystemKey string

	DatabaseURL string
	RedisURL    string

	FrontendURL string
	BackendURL  string

	GoogleClientID     string
	GoogleClientSecret string

	ChainRPCURL     string
	ContractAddress string
	ChainPrivateKey string
	ChainID         int64
}

// SepoliaChainID is the only network the deployed contract lives on.
const SepoliaChainID int64 = 11155111

func Load() Config {
	return Config{
		Port:               getenv("APP_PORT", ":5000"),
		BuildMode:          getenv("APP_BUILD_MODE", "dev"),
		SystemKey:          os.Getenv("APP_SYSTEM_KEY"),
		DatabaseURL:        os.Getenv("APP_DB"),
		RedisURL:           os.Getenv("APP_REDIS"),
		FrontendURL:        getenv("APP_FRONTEND_URL", "http://localhost:3000"),
		BackendURL:         getenv("APP_BACKEND_URL", "http://localhost:5000"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		ChainRPCURL:        os.Getenv("CHAIN_RPC_URL"),
		ContractAddress:    os.Getenv("CONTRACT_ADDRESS"),
		ChainPrivateKey:    os.Getenv("CHAIN_PRIVATE_KEY"),
		ChainID:            SepoliaChainID,
	}
}

func (c Config) Production() bool {
	return c.BuildMode != "dev"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
