package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ForeverInLaw/airdealer/internal/config"
	"github.com/ForeverInLaw/airdealer/internal/db"
	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/internal/httpapi"
	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/internal/reports"
	"github.com/ForeverInLaw/airdealer/internal/workflow"
	"github.com/ForeverInLaw/airdealer/repository"
)

func main() {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	admins := repository.NewAdminRepository(d)
	orders := repository.NewOrderRepository(d)
	users := repository.NewUserRepository(d)
	products := repository.NewProductRepository(d)
	catalog := repository.NewCatalogRepository(d)
	idp := identity.NewProvider(d, cfg.Auth.BcryptCost)

	deps := httpapi.Deps{
		Config:   cfg,
		Identity: idp,
		Gate:     gate.New(idp, admins),
		Workflow: workflow.New(orders),
		Reports:  reports.NewService(orders, users, products),
		Admins:   admins,
		Orders:   orders,
		Users:    users,
		Products: products,
		Catalog:  catalog,
	}

	shutdown, err := httpapi.Start(deps)
	if err != nil {
		log.Fatalf("start http: %v", err)
	}
	log.Printf("HTTP server listening on %s", cfg.HTTP.Address)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
