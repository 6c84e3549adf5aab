// Command exporter exporta facturas desde la línea de comandos: PDF/XML al directorio
// de exportación, paquetes cifrados, lotes de facturas pendientes y el registro.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/bundle"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/filestore"
	infrapdf "github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/pdf"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/postgres"
	"github.com/jhoicas/rechnungsverwaltung/pkg/config"
	"github.com/jhoicas/rechnungsverwaltung/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "exporter",
		Usage: "exportación de facturas (PDF, XML, ZIP cifrado)",
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "escribe rechnung_<nr>.pdf y rechnung_<nr>.xml en el directorio de exportación",
				ArgsUsage: "<nr>",
				Action:    withService(exportCmd),
			},
			{
				Name:      "bundle",
				Usage:     "genera rechnung_<nr>.zip cifrado con AES-256",
				ArgsUsage: "<nr>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"EXPORT_BUNDLE_PASSWORD"}},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "directorio o archivo de salida"},
				},
				Action: withService(bundleCmd),
			},
			{
				Name:   "missing",
				Usage:  "exporta todas las facturas que aún no tienen PDF",
				Action: withService(missingCmd),
			},
			{
				Name:  "register",
				Usage: "genera el registro de facturas en PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "rechnungsregister.pdf"},
				},
				Action: withService(registerCmd),
			},
			{
				Name:   "migrate",
				Usage:  "aplica las migraciones pendientes",
				Action: migrateCmd,
			},
			{
				Name:      "verify",
				Usage:     "descifra un paquete y comprueba el digest del XML contra el manifiesto",
				ArgsUsage: "<archivo.zip>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"EXPORT_BUNDLE_PASSWORD"}},
				},
				Action: verifyCmd,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env configuración, logger y pool compartidos por los comandos.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

// withService abre la base de datos, construye el servicio de exportación y lo
// pasa a la acción.
func withService(action func(c *cli.Context, svc *export.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c.Context)
		if err != nil {
			return err
		}
		defer e.pool.Close()

		store, err := filestore.New(e.cfg.Export.Dir)
		if err != nil {
			return err
		}
		svc := export.NewService(export.Deps{
			Invoices:          postgres.NewInvoiceRepository(e.pool),
			Customers:         postgres.NewCustomerRepository(e.pool),
			Providers:         postgres.NewServiceProviderRepository(e.pool),
			Renderer:          infrapdf.NewInvoiceRenderer(e.cfg.Export.FooterNote),
			Bundler:           bundle.NewZipWriter(),
			Store:             store,
			Report:            infrapdf.NewRegisterReport(e.cfg.App.Name),
			MinPasswordLength: e.cfg.Export.MinPasswordLength,
			Logger:            e.log.Zerolog(),
		})
		return action(c, svc)
	}
}

func invoiceArg(c *cli.Context) (string, error) {
	nr := c.Args().First()
	if nr == "" {
		return "", cli.Exit("falta el número de factura", 2)
	}
	return nr, nil
}

func exportCmd(c *cli.Context, svc *export.Service) error {
	nr, err := invoiceArg(c)
	if err != nil {
		return err
	}
	res, err := svc.ExportInvoice(c.Context, nr)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n%s\nxml_c14n_sha256: %s\n", res.PDFPath, res.XMLPath, res.Digest)
	return nil
}

func bundleCmd(c *cli.Context, svc *export.Service) error {
	nr, err := invoiceArg(c)
	if err != nil {
		return err
	}
	data, name, err := svc.Bundle(c.Context, nr, c.String("password"))
	if err != nil {
		return err
	}
	out := c.String("out")
	switch {
	case out == "":
		out = name
	case isDir(out):
		out = filepath.Join(out, name)
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func missingCmd(c *cli.Context, svc *export.Service) error {
	rep, err := svc.GenerateMissing(c.Context)
	if err != nil {
		return err
	}
	for _, nr := range rep.Exported {
		fmt.Fprintf(c.App.Writer, "exportada  %s\n", nr)
	}
	for _, f := range rep.Failed {
		fmt.Fprintf(c.App.Writer, "fallida    %s: %v\n", f.InvoiceNr, f.Err)
	}
	fmt.Fprintf(c.App.Writer, "%d exportadas, %d ya existentes, %d fallidas\n", len(rep.Exported), rep.Skipped, len(rep.Failed))
	if len(rep.Failed) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func registerCmd(c *cli.Context, svc *export.Service) error {
	data, err := svc.Register(c.Context)
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func migrateCmd(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.pool.Close()
	return postgres.Migrate(c.Context, e.pool, e.log.Component("migrate"))
}

func verifyCmd(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("falta el archivo del paquete", 2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	files, err := bundle.Open(data, c.String("password"))
	if err != nil {
		return err
	}
	digest, err := export.VerifyBundle(files)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "ok  xml_c14n_sha256: %s\n", digest)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
