package redisstream

// Settings holds Redis Streams transport configuration for Watermill.
type Settings struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	Group    string `yaml:"group" env:"GROUP"`
	Consumer string `yaml:"consumer" env:"CONSUMER"`
}

func DefaultSettings() Settings {
	return Settings{
		Addr:     "localhost:6379",
		Group:    "embedbot",
		Consumer: "embedbot-1",
	}
}
