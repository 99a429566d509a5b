package main

import (
	"errors"
	"flag"
	"log"

	"civic_feed/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration")
	force := flag.Int("force", -1, "force the schema version and clear the dirty flag")
	flag.Parse()

	config.LoadConfig()
	cfg := config.GlobalConfig.Database
	if cfg.Driver == "sqlite" {
		// sqlite 用于本地开发，表结构由 gorm AutoMigrate 维护
		log.Fatal("migrations target postgres; sqlite schemas are created by the server with database.auto_migrate")
	}

	m, err := migrate.New("file://migrations", cfg.MigrateURL())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("Failed to force version:", err)
		}
		log.Printf("Forced version %d", *force)
		return
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("Database is dirty at version %d, fix it and rerun with -force", dirty.Version)
		}
		log.Fatal(err)
	}

	log.Println("Migration successful")
}
