package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centralhq/shopify-relay/internal/config"
	"github.com/centralhq/shopify-relay/server"
	"github.com/centralhq/shopify-relay/statetoken/noncestore"
	"github.com/centralhq/shopify-relay/tenants"
	"github.com/centralhq/shopify-relay/token"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	repos, cleanup, err := buildRepos(c)
	if err != nil {
		return fmt.Errorf("buildRepos: %w", err)
	}
	defer cleanup()

	relay, err := server.New(c, repos)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: relay}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildRepos(c config.Config) (server.Repos, func(), error) {
	repos := server.Repos{}
	cleanup := func() {}

	switch c.GetStorageBackend() {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.GetMongoURI()))
		if err != nil {
			return server.Repos{}, nil, fmt.Errorf("mongo.Connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return server.Repos{}, nil, fmt.Errorf("mongo ping: %w", err)
		}

		db := client.Database(c.GetMongoDatabase())
		repos.Tenants = tenants.NewMongoRepo(db)
		repos.Tokens = token.NewMongoRepo(db)
		cleanup = func() {
			disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer disconnectCancel()
			_ = client.Disconnect(disconnectCtx)
		}
	default:
		repos.Tenants = tenants.NewInMemoryRepo()
		repos.Tokens = token.NewInMemoryRepo()
	}

	switch c.GetNonceStore() {
	case "redis":
		repos.Nonces = noncestore.NewRedisRepo(
			redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()}),
			c.GetStateTTL(),
		)
	default:
		repos.Nonces = noncestore.NewInMemoryRepo(c.GetStateTTL())
	}

	return repos, cleanup, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
