package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/interfaces/iprintlogrepo"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/notifier"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/postgres"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/printer"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/rabbitmq"
	orderrepo "github.com/corray333/backend-labs/adminlocal/internal/dal/repositories/order/postgres"
	printlogfile "github.com/corray333/backend-labs/adminlocal/internal/dal/repositories/printlog/file"
	printlogmq "github.com/corray333/backend-labs/adminlocal/internal/dal/repositories/printlog/rabbitmq"
	"github.com/corray333/backend-labs/adminlocal/internal/otel"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/formatter"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/printsvc"
	httptransport "github.com/corray333/backend-labs/adminlocal/internal/transport/http"
	"github.com/corray333/backend-labs/adminlocal/internal/worker/autoprint"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	env            string
	orderSvc       *ordersvc.OrderService
	printSvc       *printsvc.PrintService
	transport      *httptransport.HTTPTransport
	worker         *autoprint.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	printLog       *printlogfile.PrintLogFileRepository
	otel           *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	a := &App{env: viper.GetString("app.env")}

	if viper.GetBool("otel.enabled") {
		a.otel = otel.MustInitOtel(viper.GetString("otel.jaeger_endpoint"))
	}

	loc, err := time.LoadLocation(viper.GetString("store.timezone"))
	if err != nil {
		slog.Warn("Unknown store timezone, using local time", "timezone", viper.GetString("store.timezone"))
		loc = time.Local
	}

	a.postgresClient = postgres.MustNewClient(
		viper.GetString("postgres.url"),
		viper.GetString("postgres.migrations_path"),
	)
	a.orderSvc = ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(orderrepo.NewPostgresOrderRepository(a.postgresClient.DB())),
		ordersvc.WithLocation(loc),
	)

	a.printSvc = a.mustNewPrintService(loc)

	a.transport = httptransport.NewHTTPTransport(mustNewAuthService(), a.orderSvc, a.printSvc,
		httptransport.WithEnvironment(a.env),
		httptransport.WithStoreName(viper.GetString("store.name")),
	)
	a.transport.RegisterRoutes()

	// the storefront test suite runs against a live server without a printer
	if a.env != "test" {
		if viper.GetBool("notifier.enabled") {
			desktop := notifier.NewDesktop(viper.GetString("store.name")+" Admin",
				notifier.WithIcon(viper.GetString("notifier.icon")))
			a.worker = autoprint.NewWorker(a.orderSvc, a.printSvc, autoprint.WithNotifier(desktop))
		} else {
			a.worker = autoprint.NewWorker(a.orderSvc, a.printSvc)
		}
	}

	return a
}

func (a *App) mustNewPrintService(loc *time.Location) *printsvc.PrintService {
	paperSize := viper.GetInt("printer.paper_size")
	family := printer.ParseFamily(viper.GetString("printer.type"))

	transport, err := printer.NewTransport(printer.Config{
		Name:           viper.GetString("printer.name"),
		Interface:      viper.GetString("printer.interface"),
		Family:         family,
		PaperSizeMM:    paperSize,
		Timeout:        time.Duration(viper.GetInt("printer.timeout_ms")) * time.Millisecond,
		BarcodeEnabled: viper.GetBool("printer.barcode_enabled"),
	})
	if err != nil {
		panic("error while configuring printer: " + err.Error())
	}

	f := formatter.New(formatter.Config{
		StoreName:    strings.ToUpper(viper.GetString("store.name")),
		SupportEmail: viper.GetString("store.support_email"),
		PrinterName:  viper.GetString("printer.name"),
		PrinterType:  string(family),
		PaperSizeMM:  paperSize,
		Location:     loc,
	})

	a.printLog, err = printlogfile.NewPrintLogFileRepository(viper.GetString("print_log.path"))
	if err != nil {
		panic("error while opening print log: " + err.Error())
	}
	sinks := []iprintlogrepo.IPrintLogRepository{a.printLog}

	if viper.GetBool("rabbitmq.enabled") {
		a.rabbitClient = rabbitmq.MustNewClient(viper.GetString("rabbitmq.url"))
		publisher, err := printlogmq.NewPrintLogRabbitMQRepository(a.rabbitClient)
		if err != nil {
			panic("error while declaring print log queue: " + err.Error())
		}
		sinks = append(sinks, publisher)
	}

	return printsvc.MustNewPrintService(
		printsvc.WithTransport(transport),
		printsvc.WithFormatter(f),
		printsvc.WithPrintLog(sinks...),
	)
}

func mustNewAuthService() *authsvc.AuthService {
	ttl, err := authsvc.ParseTTL(viper.GetString("auth.session_ttl"))
	if err != nil {
		panic("error while parsing session ttl: " + err.Error())
	}

	secret := viper.GetString("auth.jwt_secret")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	if viper.GetString("auth.password_hash") == "" {
		slog.Warn("ADMIN_PASSWORD_HASH is not set, logins will fail")
	}

	return authsvc.MustNewAuthService(
		authsvc.WithCredentials(viper.GetString("auth.username"), viper.GetString("auth.password_hash")),
		authsvc.WithSecret(secret),
		authsvc.WithSessionTTL(ttl),
		authsvc.WithLockout(
			viper.GetInt("auth.max_login_attempts"),
			time.Duration(viper.GetInt("auth.lockout_duration"))*time.Millisecond,
		),
	)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("Admin server starting",
		"address", "http://"+a.transport.Addr(),
		"environment", a.env,
		"access", "localhost-only",
		"printer", viper.GetString("printer.name"),
		"printer_type", viper.GetString("printer.type"))

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if a.worker != nil {
		go a.worker.Start(ctx)
	} else {
		slog.Info("Order poller disabled", "environment", a.env)
	}

	<-stop
	slog.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// the running cycle still needs the DB, the printer and the print log
	if a.worker != nil {
		a.worker.Stop()
		select {
		case <-a.worker.Done():
			slog.Info("Order poller stopped")
		case <-shutdownCtx.Done():
			slog.Warn("Order poller did not finish its cycle before the shutdown timeout")
		}
	}
	cancel()

	if err := a.transport.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.postgresClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	if err := a.printLog.Close(); err != nil {
		slog.Error("Print log close error", "error", err)
	}

	if a.otel != nil {
		if err := a.otel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Tracer shutdown error", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
}
