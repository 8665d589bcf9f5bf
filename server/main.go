// Command flowd serves the workflow graph store and proxies run requests
// to the automation engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/catalog"
	"github.com/caojiachen1/CommandFlow-rs-sub000/engine"
	"github.com/caojiachen1/CommandFlow-rs-sub000/postgres"
)

const version = "0.3.0"

var log *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "flowd",
	Short: "Workflow graph store and engine gateway",
	Long: `flowd persists visual automation workflows (graphs of trigger,
action and control nodes) in PostgreSQL and forwards run requests to the
local automation engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("flowd v" + version)
	},
}

func init() {
	viper.SetEnvPrefix("COMMANDFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("listen_addr", ":3000")
	viper.SetDefault("engine_url", "http://127.0.0.1:8765")
	viper.SetDefault("log_format", "human")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "log format: json or human")
	serveCmd.Flags().String("listen-addr", ":3000", "address the HTTP API listens on")
	serveCmd.Flags().String("database-url", "", "PostgreSQL connection string")
	serveCmd.Flags().String("engine-url", "http://127.0.0.1:8765", "base URL of the automation engine")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen-addr"))
	viper.BindPFlag("database_url", serveCmd.Flags().Lookup("database-url"))
	viper.BindPFlag("engine_url", serveCmd.Flags().Lookup("engine-url"))

	rootCmd.AddCommand(serveCmd, versionCmd)
}

func initLogger() error {
	var cfg zap.Config
	if viper.GetString("log_format") == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if viper.GetBool("debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = logger.Sugar()
	return nil
}

func serve(ctx context.Context) error {
	dbURL := viper.GetString("database_url")
	if dbURL == "" {
		return errors.New("COMMANDFLOW_DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	var store workflow.Store = postgres.New(pool)
	eng := engine.NewClient(viper.GetString("engine_url"), log)

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Catalog ───────────────────────────────────────────────────────
	app.Get("/catalog", func(c fiber.Ctx) error {
		kinds := catalog.Kinds()
		metas := make([]catalog.Meta, 0, len(kinds))
		for _, k := range kinds {
			metas = append(metas, catalog.Get(k))
		}
		return c.JSON(metas)
	})

	// ── Graphs (bulk) ─────────────────────────────────────────────────
	app.Post("/graphs", func(c fiber.Ctx) error {
		var g workflow.Graph
		if err := c.Bind().JSON(&g); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		result, err := store.SaveGraph(c.Context(), &g)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(result)
	})

	app.Get("/graphs", func(c fiber.Ctx) error {
		infos, err := store.ListGraphs(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(infos)
	})

	app.Get("/graphs/:id", func(c fiber.Ctx) error {
		g, err := store.GetGraph(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
		}
		return c.JSON(g)
	})

	app.Delete("/graphs/:id", func(c fiber.Ctx) error {
		if err := store.DeleteGraph(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/graphs/:id/nodes", func(c fiber.Ctx) error {
		var node workflow.Node
		if err := c.Bind().JSON(&node); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if !catalog.Has(node.Kind) {
			return c.Status(422).JSON(fiber.Map{"error": "unknown node kind"})
		}
		id, err := store.AddNode(c.Context(), c.Params("id"), &node)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Get("/graphs/:id/nodes", func(c fiber.Ctx) error {
		nodes, err := store.ListNodes(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(nodes)
	})

	app.Put("/nodes/:id", func(c fiber.Ctx) error {
		var node workflow.Node
		if err := c.Bind().JSON(&node); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		node.ID = c.Params("id")
		err := store.UpdateNode(c.Context(), &node)
		if errors.Is(err, workflow.ErrNodeNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	app.Delete("/nodes/:id", func(c fiber.Ctx) error {
		if err := store.DeleteNode(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/graphs/:id/edges", func(c fiber.Ctx) error {
		var edge workflow.Edge
		if err := c.Bind().JSON(&edge); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, err := store.AddEdge(c.Context(), c.Params("id"), &edge)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Get("/graphs/:id/edges", func(c fiber.Ctx) error {
		edges, err := store.ListEdges(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(edges)
	})

	app.Delete("/edges/:id", func(c fiber.Ctx) error {
		if err := store.DeleteEdge(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Engine ────────────────────────────────────────────────────────
	app.Post("/graphs/:id/run", func(c fiber.Ctx) error {
		g, err := store.GetGraph(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
		}
		msg, err := eng.Run(c.Context(), g)
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": msg})
	})

	app.Post("/run/stop", func(c fiber.Ctx) error {
		if err := eng.Stop(c.Context()); err != nil {
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "stop requested"})
	})

	app.Get("/windows", func(c fiber.Ctx) error {
		return c.JSON(eng.ListWindows(c.Context()))
	})

	app.Get("/healthz", func(c fiber.Ctx) error {
		engineOK := eng.Health(c.Context()) == nil
		return c.JSON(fiber.Map{"status": "ok", "engine": engineOK})
	})

	log.Infow("listening", "addr", viper.GetString("listen_addr"))
	return app.Listen(viper.GetString("listen_addr"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
