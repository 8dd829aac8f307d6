package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/climaborough/go-platform-client/client"
	"github.com/climaborough/go-platform-client/internal/config"
	"github.com/climaborough/go-platform-client/keycloak"
	"github.com/climaborough/go-platform-client/session"
)

const usage = `Usage: climactl <command> [args]

Commands:
  health                 Check backend liveness
  info                   Show backend service description
  cities                 List member cities
  kpis <city-id>         List a city's KPIs
  kpi-values <kpi-id> <window>   List KPI values for a window ("2025-07" or "2025-07-01|2025-07-31")
  dashboard <city-code>  Show a city's dashboard
  login-url              Print the interactive login URL
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return errors.New("missing command")
	}

	_ = godotenv.Load()
	cfg := config.New()
	if err := config.Validate(cfg); err != nil {
		return err
	}
	configureLogging(cfg.GetLogLevel())
	displayAppname(cfg.GetAppName())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager, apiClient, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	go manager.Run(ctx)

	return dispatch(ctx, manager, apiClient, os.Args[1], os.Args[2:])
}

func buildStack(ctx context.Context, cfg config.Config) (*session.Manager, *client.Client, error) {
	broker, err := keycloak.New(keycloak.Config{
		URL:                cfg.GetKeycloakURL(),
		Realm:              cfg.GetKeycloakRealm(),
		ClientID:           cfg.GetClientID(),
		PKCEMethod:         cfg.GetPKCEMethod(),
		CheckSSO:           cfg.GetSSOCheck(),
		DisableIframeCheck: !cfg.GetCheckLoginIframe(),
		ConnectTimeout:     cfg.GetBrokerConnectTimeout(),
	})
	if err != nil {
		return nil, nil, err
	}

	manager, err := session.New(broker, cfg.GetCallbackURL())
	if err != nil {
		return nil, nil, err
	}
	if _, err := manager.Initialize(ctx); err != nil {
		zlog.Warn().Err(err).Msg("session initialization failed, continuing unauthenticated")
	}

	apiClient, err := client.New(cfg.GetAPIBaseURL(),
		client.WithSession(manager),
		client.WithLoginRedirect(func(loginURL string) {
			fmt.Fprintf(os.Stderr, "Session expired. Log in at:\n%s\n", loginURL)
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return manager, apiClient, nil
}

func dispatch(ctx context.Context, manager *session.Manager, apiClient *client.Client, command string, args []string) error {
	switch command {
	case "health":
		status, err := apiClient.Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(status)

	case "info":
		info, err := apiClient.Info(ctx)
		if err != nil {
			return err
		}
		return printJSON(info)

	case "cities":
		cities, err := apiClient.Cities(ctx, client.CityListParams{})
		if err != nil {
			return err
		}
		return printJSON(cities)

	case "kpis":
		if len(args) < 1 {
			return errors.New("kpis requires a city ID")
		}
		cityID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid city ID %q", args[0])
		}
		kpis, err := apiClient.KPIs(ctx, client.KPIListParams{CityID: cityID})
		if err != nil {
			return err
		}
		return printJSON(kpis)

	case "kpi-values":
		if len(args) < 2 {
			return errors.New("kpi-values requires a KPI ID and a window token")
		}
		kpiID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid KPI ID %q", args[0])
		}
		values, err := apiClient.KPIValuesForWindow(ctx, kpiID, args[1])
		if err != nil {
			return err
		}
		return printJSON(values)

	case "dashboard":
		if len(args) < 1 {
			return errors.New("dashboard requires a city code")
		}
		dashboard, err := apiClient.DashboardByCity(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(dashboard)

	case "login-url":
		loginURL, err := manager.Login("/")
		if err != nil {
			return err
		}
		fmt.Println(loginURL)
		return nil

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func configureLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
