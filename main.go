package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/openrota/roombooking-service/config"
	"github.com/openrota/roombooking-service/internal/handler"
	"github.com/openrota/roombooking-service/internal/middleware"
	"github.com/openrota/roombooking-service/internal/notifier"
	"github.com/openrota/roombooking-service/internal/repository"
	"github.com/openrota/roombooking-service/internal/service"
	"github.com/openrota/roombooking-service/pkg/database"
	"github.com/openrota/roombooking-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	roomRepo := repository.NewRoomRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	blockingRepo := repository.NewBlockingRepository(db)

	// Service; pending blockings do not count as conflicts by default
	reservationSvc := service.NewReservationService(
		reservationRepo, roomRepo, blockingRepo,
		notifier.NewAMQPNotifier(publisher),
		false,
	)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "roombooking-service"})
	})

	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e)

	log.Printf("Room Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
