package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addParkingSlotHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/add_parking_slot"
	bookParkingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/book_parking"
	getMyTicketsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_my_tickets"
	getOccupiedSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_occupied_slots"
	getParkingAreasHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_parking_areas"
	getParkingSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_parking_slots"
	healthHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/health"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/infra/cache/availability"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/eventbus"
	reservationsService "github.com/m04kA/SMC-ParkingService/internal/service/reservations"
	slotsService "github.com/m04kA/SMC-ParkingService/internal/service/slots"
	bookSlotUC "github.com/m04kA/SMC-ParkingService/internal/usecase/book_slot"
	getOccupiedSlotsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/get_occupied_slots"
	getParkingAreasUC "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_areas"
	"github.com/m04kA/SMC-ParkingService/internal/worker/sweeper"
	"github.com/m04kA/SMC-ParkingService/migrations"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// availabilityCache общий интерфейс Redis-кэша и заглушки
type availabilityCache interface {
	bookSlotUC.AvailabilityCache
	getParkingAreasUC.AvailabilityCache
}

// eventPublisher общий интерфейс издателей событий
type eventPublisher interface {
	PublishSlotBooked(ctx context.Context, event eventbus.SlotBookedEvent) error
	Close() error
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from %s", *configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool: каждая операция берёт соединение из пула
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		applied, err := migrations.Up(db)
		if err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Migrations applied: %v", applied)
	}

	// Без метрик обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	slotRepository := slotRepo.NewRepository(wrappedDB)
	reservationRepository := reservationRepo.NewRepository(wrappedDB)

	// Кэш доступности
	var cache availabilityCache = availability.Noop{}

	if cfg.Redis.Enabled {
		rdb, err := availability.NewClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("Redis unavailable, availability cache disabled: %v", err)
		} else {
			defer rdb.Close()
			cache = availability.New(rdb, cfg.Redis.TTL())
			log.Info("Availability cache enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.TTL())
		}
	}

	// Издатель событий о бронированиях
	publisher := newPublisher(cfg.Events, log)
	defer publisher.Close()

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(
		slotRepository,
		reservationRepository,
		txMgr,
		cache,
		metricsCollector,
		cfg.Parking.LockTimeout(),
		log,
	)
	reservationSvc := reservationsService.NewService(reservationRepository, log)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(
		reservationRepository,
		slotRepository,
		txMgr,
		cache,
		publisher,
		metricsCollector,
		bookSlotUC.Config{
			ActiveWindow:   cfg.Parking.ActiveWindow(),
			LockTimeout:    cfg.Parking.LockTimeout(),
			PublishTimeout: cfg.Events.PublishTimeout(),
		},
		log,
	)
	getOccupiedSlotsUseCase := getOccupiedSlotsUC.NewUseCase(reservationRepository, cfg.Parking.ActiveWindow(), log)
	getParkingAreasUseCase := getParkingAreasUC.NewUseCase(
		slotRepository,
		cache,
		metricsCollector,
		getParkingAreasUC.Config{
			Capacity: cfg.Parking.Capacity,
			Mode:     cfg.Parking.Mode(),
		},
		log,
	)
	log.Info("Parking core initialized (capacity=%d, mode=%s, window=%s, lock_timeout=%s)",
		cfg.Parking.Capacity, cfg.Parking.Mode(), cfg.Parking.ActiveWindow(), cfg.Parking.LockTimeout())

	// Инициализируем handlers
	bookParking := bookParkingHandler.NewHandler(bookSlotUseCase, log)
	getMyTickets := getMyTicketsHandler.NewHandler(reservationSvc, log)
	getOccupiedSlots := getOccupiedSlotsHandler.NewHandler(getOccupiedSlotsUseCase, log)
	getParkingSlots := getParkingSlotsHandler.NewHandler(slotSvc, log)
	addParkingSlot := addParkingSlotHandler.NewHandler(slotSvc, log)
	getParkingAreas := getParkingAreasHandler.NewHandler(getParkingAreasUseCase, log)
	health := healthHandler.NewHandler(wrappedDB, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	r.HandleFunc("/book_parking", bookParking.Handle).Methods(http.MethodPost)
	r.HandleFunc("/my_tickets/{email}", getMyTickets.Handle).Methods(http.MethodGet)

	// --- Занятость и доступность ---
	r.HandleFunc("/occupied_slots", getOccupiedSlots.Handle).Methods(http.MethodPost)
	r.HandleFunc("/parking_slots", getParkingSlots.Handle).Methods(http.MethodGet)
	r.HandleFunc("/parking_areas", getParkingAreas.Handle).Methods(http.MethodGet)

	// --- Реестр мест ---
	r.HandleFunc("/parking/add", addParkingSlot.Handle).Methods(http.MethodPost)

	// Фоновый сброс флага реестра (по умолчанию выключен)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workersDone := make(chan struct{})

	if cfg.Registry.SweepEnabled {
		sw := sweeper.New(slotSvc, cfg.Registry.SweepInterval(), cfg.Parking.ActiveWindow(), log)
		go func() {
			defer close(workersDone)
			sw.Run(workerCtx)
		}()
	} else {
		close(workersDone)
		log.Info("Registry sweeper disabled: occupied flag stays set after the active window")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	<-workersDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

// newPublisher выбирает брокер по конфигурации; при ошибке подключения события не публикуются
func newPublisher(cfg config.EventsConfig, log *logger.Logger) eventPublisher {
	switch strings.ToLower(cfg.Broker) {
	case config.BrokerRabbitMQ:
		p, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			log.Warn("RabbitMQ unavailable, booking events disabled: %v", err)
			return eventbus.NoopPublisher{}
		}
		log.Info("Booking events published to RabbitMQ exchange %s", cfg.Exchange)
		return p

	case config.BrokerKafka:
		log.Info("Booking events published to Kafka topic %s (brokers=%v)", cfg.Topic, cfg.KafkaBrokers)
		return eventbus.NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic)

	default:
		log.Info("Booking events disabled")
		return eventbus.NoopPublisher{}
	}
}
