// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые бэкенды хранения снапшота.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата, в котором засчитывается активность
	ActivityChatID int64 `envconfig:"ACTIVITY_CHAT_ID" required:"true"`

	// --- Storage ---
	StorageBackend  string `envconfig:"STORAGE_BACKEND" default:"file"`
	StorageFilePath string `envconfig:"STORAGE_FILE_PATH" default:"data/user_data.json"`

	// --- Database (STORAGE_BACKEND=postgres) ---
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"points_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"4"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// --- Redis (STORAGE_BACKEND=redis) ---
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisKey      string `envconfig:"REDIS_KEY" default:"points_bot:snapshot"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppLogFile  string `envconfig:"APP_LOG_FILE"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	HealthAddr  string `envconfig:"HEALTH_ADDR" default:":8080"`

	// --- Bot runtime ---
	BotMaxInflight          int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`
	QueueSize               int `envconfig:"QUEUE_SIZE" default:"256"`

	// --- Admin ---
	// Пустой хеш отключает вход по паролю, остаются только ADMIN_IDS.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Rewards ---
	RewardMessagePoints  int64  `envconfig:"REWARD_MESSAGE_POINTS" default:"20"`
	RewardReactionPoints int64  `envconfig:"REWARD_REACTION_POINTS" default:"5"`
	RewardDailyBonus     int64  `envconfig:"REWARD_DAILY_BONUS" default:"100"`
	RewardTiersRaw       string `envconfig:"REWARD_TIERS" default:"3:100,5:200,10:400!"`

	// --- Streak ---
	StreakCountReactions    bool   `envconfig:"STREAK_COUNT_REACTIONS" default:"true"`
	StreakReminderThreshold int    `envconfig:"STREAK_REMINDER_THRESHOLD" default:"3"`
	PointsPeriod            string `envconfig:"POINTS_PERIOD" default:"weekly"`
	PeriodSweepCron         string `envconfig:"PERIOD_SWEEP_CRON" default:"5 0 * * *"`
	ReminderCron            string `envconfig:"REMINDER_CRON" default:"0 20 * * *"`

	// --- Economy ---
	EconomyAllowNegative bool `envconfig:"ECONOMY_ALLOW_NEGATIVE" default:"true"`
	GiftRequiresAdmin    bool `envconfig:"GIFT_REQUIRES_ADMIN" default:"false"`
	GiftDeductsGiver     bool `envconfig:"GIFT_DEDUCTS_GIVER" default:"false"`
	RankingExcludeAdmins bool `envconfig:"RANKING_EXCLUDE_ADMINS" default:"false"`
	RankingSize          int  `envconfig:"RANKING_SIZE" default:"5"`

	// --- Shop ---
	ShopURL      string `envconfig:"SHOP_URL"`
	ShopItemsRaw string `envconfig:"SHOP_ITEMS"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс, в котором считаются календарные дни.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return loc, nil
}

// IsAdminID проверяет, указан ли пользователь в ADMIN_IDS.
func (c *Config) IsAdminID(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN пуст")
	}
	if c.ActivityChatID == 0 {
		return fmt.Errorf("ACTIVITY_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("QUEUE_SIZE должен быть > 0")
	}
	switch c.StorageBackend {
	case StorageFile:
		if strings.TrimSpace(c.StorageFilePath) == "" {
			return fmt.Errorf("STORAGE_FILE_PATH пуст")
		}
	case StoragePostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageRedis:
		if c.RedisKey == "" {
			return fmt.Errorf("REDIS_KEY пуст")
		}
	default:
		return fmt.Errorf("неизвестный STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.PointsPeriod != "weekly" && c.PointsPeriod != "monthly" {
		return fmt.Errorf("POINTS_PERIOD должен быть weekly или monthly")
	}
	if c.RewardMessagePoints < 0 || c.RewardReactionPoints < 0 || c.RewardDailyBonus < 0 {
		return fmt.Errorf("награды не могут быть отрицательными")
	}
	if c.RankingSize <= 0 {
		return fmt.Errorf("RANKING_SIZE должен быть > 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
