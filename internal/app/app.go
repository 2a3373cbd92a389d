// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: выбирает хранилище, поднимает очередь, сервисы,
// обработчики, фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/bot"
	"serotonyl.ru/points-bot/internal/bot/filters"
	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/config"
	"serotonyl.ru/points-bot/internal/db/file"
	"serotonyl.ru/points-bot/internal/db/postgres"
	"serotonyl.ru/points-bot/internal/db/redis"
	"serotonyl.ru/points-bot/internal/features/accounts"
	"serotonyl.ru/points-bot/internal/features/admin"
	"serotonyl.ru/points-bot/internal/features/economy"
	"serotonyl.ru/points-bot/internal/features/members"
	"serotonyl.ru/points-bot/internal/features/ranking"
	"serotonyl.ru/points-bot/internal/features/shop"
	"serotonyl.ru/points-bot/internal/features/streak"
	"serotonyl.ru/points-bot/internal/health"
	"serotonyl.ru/points-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Queue     *jobs.Queue
	Health    *health.Server
	BotAPI    *tgbotapi.BotAPI

	closers []func()
}

// Close освобождает соединения с хранилищем.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	period, err := common.ParsePeriod(cfg.PointsPeriod)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := streak.PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := shop.ParseCatalog(cfg.ShopItemsRaw, cfg.ShopURL)
	if err != nil {
		return nil, fmt.Errorf("SHOP_ITEMS: %w", err)
	}

	// === 1. Хранилище ===
	backend, err := a.openBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	store, err := accounts.Open(ctx, accounts.NewPersistenceStore(backend, accounts.NewCodec(period)))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка загрузки данных: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)
	a.BotAPI = botAPI

	// === 3. Очередь: через неё проходят все обращения к состоянию ===
	queue := jobs.NewQueue(cfg.QueueSize)
	a.Queue = queue

	// === 4. Сервисы ===
	adminService := admin.NewService(cfg.AdminIDs, cfg.AdminPasswordHash)
	memberService := members.NewService(store, queue)
	economyService := economy.NewService(store, queue, adminService, economy.OptionsFromConfig(cfg))
	streakService := streak.NewService(store, queue, policy, streak.Options{
		Period:            period,
		Location:          loc,
		ReminderThreshold: cfg.StreakReminderThreshold,
	})
	rankingService := ranking.NewService(store, queue, adminService, ranking.Options{
		ExcludeAdmins: cfg.RankingExcludeAdmins,
		Period:        period,
	}, streakService.Today)
	shopService := shop.NewService(store, queue, catalog)

	// === 5. Обработчики ===
	handlers := bot.Handlers{
		Members: members.NewHandler(memberService),
		Economy: economy.NewHandler(economyService, botAPI),
		Streak:  streak.NewHandler(streakService, botAPI),
		Ranking: ranking.NewHandler(rankingService, botAPI, cfg.RankingSize),
		Shop:    shop.NewHandler(shopService, botAPI, cfg.ActivityChatID),
		Admin:   admin.NewHandler(adminService, botAPI),
	}

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.ActivityChatID, botAPI, botAPI)

	// === 7. Собираем бота ===
	a.Bot = bot.New(botAPI, botAPI, cfg, handlers, chatFilter, bot.HelpText(policy, period, catalog.URL))

	// === 8. Планировщик задач ===
	a.Scheduler = jobs.NewScheduler(streakService, a.Bot.SendMessageToUser, jobs.Schedule{
		PeriodSweep: cfg.PeriodSweepCron,
		Reminders:   cfg.ReminderCron,
	}, loc)

	// === 9. Проверка живости ===
	a.Health = health.NewServer(cfg.HealthAddr, health.NewRouter(cfg.AppEnv, time.Now()))

	return a, nil
}

// openBackend подключает хранилище снапшота по STORAGE_BACKEND.
func (a *App) openBackend(ctx context.Context, cfg *config.Config) (accounts.Backend, error) {
	logger := log.WithField("backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		logger.Info("Хранилище: PostgreSQL")
		return postgres.NewSnapshotRepository(pool), nil

	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("Ошибка закрытия Redis")
			}
		})
		logger.WithField("key", cfg.RedisKey).Info("Хранилище: Redis")
		return redis.NewSnapshotStore(client, cfg.RedisKey), nil

	default:
		store, err := file.New(cfg.StorageFilePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла данных: %w", err)
		}
		logger.WithField("path", store.Path()).Info("Хранилище: файл")
		return store, nil
	}
}
