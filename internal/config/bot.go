package config

// Bot — телеграм-бот для алертов по просроченным сделкам.
// Без токена нотификации просто выключены.
type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`
}
