package migrate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/cmd/util"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/db/migrate"
)

var disableSSL bool

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd)
		},
	}
	cmd.Flags().BoolVar(&disableSSL,
		"disable-ssl",
		true,
		"adds sslmode=disable to the database url if no sslmode is given")
	return cmd
}

func startMigration(cmd *cobra.Command) error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if config.DB == "" {
		return fmt.Errorf("no database configured (--db)")
	}
	if err := util.WaitForServices(cmd.Context()); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}
	dbURL := config.DB
	if disableSSL {
		dbURL = prepareURLForDB(dbURL)
	}
	if err := migrate.MigrateDb(dbURL); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	version, dirty, err := migrate.Version(dbURL)
	if err != nil {
		return err
	}
	log.Info("Database migrated",
		log.Uint("version", version),
		log.Bool("dirty", dirty))
	return nil
}

func prepareURLForDB(url string) string {
	if strings.Contains(url, "sslmode=") {
		return url
	}
	options := "sslmode=disable"
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
