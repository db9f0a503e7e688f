package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/internal/storage"
	"github.com/andresuchdata/inventory-analytics/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to the DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	dbURL := c.String("db-url")
	if dbURL == "" {
		dbURL = config.Load().Database.URL()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the ledger schema and load items and transactions",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the items and transactions tables",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:  "items",
				Usage: "Upsert items from a CSV or XLSX file (id,name,category,unit,current_stock,unit_price)",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "Items CSV or XLSX file",
						Value:   "./data/seeds/items.csv",
						EnvVars: []string{"SEED_ITEMS_FILE"},
					},
				}, storageFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: runItems,
			},
			{
				Name:  "transactions",
				Usage: "Append ledger entries from CSV or XLSX files (item_id,direction,quantity,date,note,user_id)",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "Transactions CSV or XLSX file, or a key prefix with --prefix",
						Value:   "./data/seeds/transactions.csv",
						EnvVars: []string{"SEED_TRANSACTIONS_FILE"},
					},
					&cli.BoolFlag{
						Name:  "prefix",
						Usage: "With --from-storage, import every export under --file",
					},
				}, storageFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: runTransactions,
			},
			{
				Name:  "demo",
				Usage: "Generate a synthetic ledger for local testing",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{Name: "items", Usage: "Number of items", Value: 25},
					&cli.IntFlag{Name: "days", Usage: "Days of history ending yesterday", Value: 180},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed", Value: 42},
				},
				Before: initDB,
				After:  closeDB,
				Action: runDemo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

func runSchema(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := createSchema(c.Context, db); err != nil {
		return err
	}
	logger.Log.Info().Msg("schema ready")
	return nil
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "from-storage",
			Usage: "Treat --file as an object key in the configured STORAGE_* bucket or directory",
		},
	}
}

func newTableSource(c *cli.Context) (tableSource, error) {
	if !c.Bool("from-storage") {
		return tableSource{}, nil
	}
	store, err := storage.New(config.Load().Storage)
	if err != nil {
		return tableSource{}, fmt.Errorf("failed to open object storage: %w", err)
	}
	return tableSource{store: store}, nil
}

func runItems(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	src, err := newTableSource(c)
	if err != nil {
		return err
	}

	data, err := src.read(c.Context, c.String("file"))
	if err != nil {
		return err
	}

	header, records, err := readTable(c.String("file"), data)
	if err != nil {
		return err
	}

	items, err := parseItems(header, records)
	if err != nil {
		return fmt.Errorf("%s: %w", c.String("file"), err)
	}

	return withTx(c.Context, db, func(tx *sql.Tx) error {
		return upsertItems(c.Context, tx, items)
	})
}

func runTransactions(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	src, err := newTableSource(c)
	if err != nil {
		return err
	}

	names, err := src.names(c.Context, c.String("file"), c.Bool("prefix"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		logger.Log.Warn().Str("prefix", c.String("file")).Msg("no ledger exports found")
		return nil
	}

	var txs []domain.Transaction
	for _, name := range names {
		data, err := src.read(c.Context, name)
		if err != nil {
			return err
		}

		header, records, err := readTable(name, data)
		if err != nil {
			return err
		}

		parsed, err := parseTransactions(header, records)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		logger.Log.Debug().Str("source", name).Int("rows", len(parsed)).Msg("ledger export parsed")
		txs = append(txs, parsed...)
	}

	return withTx(c.Context, db, func(tx *sql.Tx) error {
		return insertTransactions(c.Context, tx, txs)
	})
}

func runDemo(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	if err := createSchema(c.Context, db); err != nil {
		return err
	}

	items, txs := generateDemoLedger(c.Int64("seed"), c.Int("items"), c.Int("days"), time.Now())
	return withTx(c.Context, db, func(tx *sql.Tx) error {
		if err := upsertItems(c.Context, tx, items); err != nil {
			return err
		}
		return insertTransactions(c.Context, tx, txs)
	})
}

// withTx commits when fn succeeds and rolls back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
