// costctl ejecuta las operaciones del motor de costeo contra la base de datos.
//
// Uso:
//
//	costctl product-cost --product MESA --currency USD
//	costctl calculate --product MESA
//	costctl simulate-bom --product MESA --quantity 10 --facility BOD-1
//	costctl task-time --task CORTE --quantity 3
//	costctl task-cost --task CORTE --product MESA --routing RUTA-MESA
//	costctl receive --product TORNILLO --facility BOD-1 --item INV-9 --quantity 50
//
// La salida es JSON en stdout; los logs van a stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "costctl",
		Usage:   "Motor de costeo de productos y fabricación",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Nivel de log (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Connection string de PostgreSQL (por defecto DB_* del entorno)",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			productCostCommand(),
			calculateCommand(),
			simulateBomCommand(),
			taskTimeCommand(),
			taskCostCommand(),
			receiveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	productFlag  = &cli.StringFlag{Name: "product", Aliases: []string{"p"}, Usage: "ID del producto", Required: true}
	currencyFlag = &cli.StringFlag{Name: "currency", Aliases: []string{"c"}, Usage: "Moneda (por defecto COSTING_DEFAULT_CURRENCY)"}
	prefixFlag   = &cli.StringFlag{Name: "prefix", Usage: "Prefijo de tipo de costo (por defecto COSTING_DEFAULT_PREFIX)"}
	taskFlag     = &cli.StringFlag{Name: "task", Aliases: []string{"t"}, Usage: "ID de la tarea (work effort)", Required: true}
)

// withUseCase abre el pool, cablea el motor y ejecuta fn. El pool se cierra al terminar.
func withUseCase(c *cli.Context, fn func(ctx context.Context, uc *costing.CostingUseCase) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if url := c.String("database-url"); url != "" {
		cfg.DB.DatabaseURL = url
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   c.String("log-level"),
		Service: "costctl",
		Output:  os.Stderr,
	})

	ctx := c.Context
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	formulas := costing.NewFormulaRegistry()
	costing.RegisterBuiltins(formulas)
	engine := costing.NewEngine(formulas, costing.Settings{Log: log.Zerolog(), Decimals: cfg.Costing.Decimals})
	uc := costing.NewCostingUseCase(postgres.NewTxRunner(pool), costing.NewKeyedLocker(), engine, costing.UseCaseConfig{
		DefaultCurrency: cfg.Costing.DefaultCurrency,
		DefaultPrefix:   cfg.Costing.DefaultPrefix,
	}, log.Zerolog())

	out, err := fn(ctx, uc)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseDecimal(c *cli.Context, name string) (decimal.Decimal, error) {
	s := c.String(name)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s inválido: %w", name, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func productCostCommand() *cli.Command {
	return &cli.Command{
		Name:  "product-cost",
		Usage: "Costo vigente de un producto",
		Flags: []cli.Flag{productFlag, currencyFlag, prefixFlag},
		Action: func(c *cli.Context) error {
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				currency := orDefault(c.String("currency"), uc.Defaults().DefaultCurrency)
				prefix := orDefault(c.String("prefix"), uc.Defaults().DefaultPrefix)
				cost, err := uc.GetProductCost(ctx, c.String("product"), currency, prefix)
				if err != nil {
					return nil, err
				}
				return dto.ProductCostResponse{
					ProductID:               c.String("product"),
					CurrencyUomID:           currency,
					CostComponentTypePrefix: prefix,
					Cost:                    cost,
				}, nil
			})
		},
	}
}

func calculateCommand() *cli.Command {
	return &cli.Command{
		Name:  "calculate",
		Usage: "Recalcula y persiste los costos estándar de un producto",
		Flags: []cli.Flag{productFlag, currencyFlag, prefixFlag},
		Action: func(c *cli.Context) error {
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				currency := orDefault(c.String("currency"), uc.Defaults().DefaultCurrency)
				prefix := orDefault(c.String("prefix"), uc.Defaults().DefaultPrefix)
				total, err := uc.CalculateProductCosts(ctx, c.String("product"), currency, prefix)
				if err != nil {
					return nil, err
				}
				return dto.CalculateProductCostsResponse{
					ProductID:               c.String("product"),
					CurrencyUomID:           currency,
					CostComponentTypePrefix: prefix,
					TotalCost:               total,
				}, nil
			})
		},
	}
}

func simulateBomCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate-bom",
		Usage: "Simula el costo de fabricar una cantidad (un nivel del BOM)",
		Flags: []cli.Flag{
			productFlag,
			currencyFlag,
			&cli.StringFlag{Name: "quantity", Aliases: []string{"q"}, Value: "1", Usage: "Cantidad a fabricar"},
			&cli.StringFlag{Name: "facility", Aliases: []string{"f"}, Usage: "Bodega (vacío = global)"},
		},
		Action: func(c *cli.Context) error {
			qty, err := parseDecimal(c, "quantity")
			if err != nil {
				return err
			}
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				in := costing.SimulationInput{
					ProductID:     c.String("product"),
					Quantity:      qty,
					CurrencyUomID: orDefault(c.String("currency"), uc.Defaults().DefaultCurrency),
					FacilityID:    c.String("facility"),
				}
				nodes, err := uc.SimulateBomCost(ctx, in)
				if err != nil {
					return nil, err
				}
				return dto.FromBomNodes(in, nodes), nil
			})
		},
	}
}

func taskTimeCommand() *cli.Command {
	return &cli.Command{
		Name:  "task-time",
		Usage: "Tiempo estimado de una tarea de ruta (ms)",
		Flags: []cli.Flag{
			taskFlag,
			&cli.StringFlag{Name: "product", Usage: "Producto"},
			&cli.StringFlag{Name: "routing", Usage: "Ruta"},
			&cli.StringFlag{Name: "quantity", Aliases: []string{"q"}, Usage: "Cantidad (<= 0 se toma como 1)"},
		},
		Action: func(c *cli.Context) error {
			qty, err := parseDecimal(c, "quantity")
			if err != nil {
				return err
			}
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				tt, err := uc.GetEstimatedTaskTime(ctx, costing.TaskTimeInput{
					WorkEffortID: c.String("task"),
					ProductID:    c.String("product"),
					RoutingID:    c.String("routing"),
					Quantity:     qty,
				})
				if err != nil {
					return nil, err
				}
				return dto.FromTaskTime(c.String("task"), tt), nil
			})
		},
	}
}

func taskCostCommand() *cli.Command {
	return &cli.Command{
		Name:  "task-cost",
		Usage: "Costo de una tarea de ruta",
		Flags: []cli.Flag{
			taskFlag,
			currencyFlag,
			&cli.StringFlag{Name: "product", Usage: "Producto"},
			&cli.StringFlag{Name: "routing", Usage: "Ruta"},
		},
		Action: func(c *cli.Context) error {
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				currency := orDefault(c.String("currency"), uc.Defaults().DefaultCurrency)
				tc, err := uc.GetTaskCost(ctx, c.String("task"), currency, c.String("product"), c.String("routing"))
				if err != nil {
					return nil, err
				}
				return dto.FromTaskCost(currency, tc), nil
			})
		},
	}
}

func receiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "receive",
		Usage: "Recalcula el costo promedio tras una recepción de inventario",
		Flags: []cli.Flag{
			productFlag,
			&cli.StringFlag{Name: "facility", Aliases: []string{"f"}, Usage: "Bodega", Required: true},
			&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "ID del inventory item recibido", Required: true},
			&cli.StringFlag{Name: "quantity", Aliases: []string{"q"}, Usage: "Cantidad aceptada", Required: true},
		},
		Action: func(c *cli.Context) error {
			qty, err := parseDecimal(c, "quantity")
			if err != nil {
				return err
			}
			return withUseCase(c, func(ctx context.Context, uc *costing.CostingUseCase) (any, error) {
				avg, err := uc.UpdateAverageCostOnReceipt(ctx, costing.ReceiptInput{
					FacilityID:       c.String("facility"),
					QuantityAccepted: qty,
					ProductID:        c.String("product"),
					InventoryItemID:  c.String("item"),
				})
				if err != nil {
					return nil, err
				}
				return dto.FromAverageCost(avg), nil
			})
		},
	}
}
