package postgres

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registran el driver postgres y la fuente file:// de golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jhoicas/tyrex-b2b-api/pkg/config"
)

// Migrate aplica las migraciones SQL pendientes de dir. Sin cambios no es error.
func Migrate(cfg config.DBConfig, dir string) error {
	m, err := migrate.New("file://"+dir, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migraciones: %w", err)
	}
	return nil
}
