package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/postgres"
)

type importOutput struct {
	TenantID string `json:"tenant_id"`
	Imported int    `json:"imported"`
}

func newServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Catálogo de dependencias municipales",
	}
	cmd.AddCommand(newServicesImportCmd())
	return cmd
}

func newServicesImportCmd() *cobra.Command {
	var (
		tenantCode string
		file       string
		delimiter  string
		latin1     bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa dependencias desde un CSV (codigo, nombre, ubicación); actualiza por código",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sep, size := utf8.DecodeRuneInString(delimiter)
			if size == 0 || size != len(delimiter) {
				return fmt.Errorf("--delimiter debe ser un solo carácter")
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()

			rows, err := readServices(f, sep, latin1)
			if err != nil {
				return err
			}

			pool, log, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			tenant, err := postgres.NewTenantRepository(pool).GetByCode(cmd.Context(), strings.ToUpper(tenantCode))
			if err != nil {
				return err
			}
			if tenant == nil {
				return fmt.Errorf("tenant %q: %w", tenantCode, domain.ErrNotFound)
			}
			if err := importServices(cmd.Context(), postgres.NewTxRunner(pool), tenant.ID, rows); err != nil {
				return err
			}
			log.Info().Str("tenant_id", tenant.ID).Int("rows", len(rows)).Msg("dependencias importadas")
			return writeJSON(importOutput{TenantID: tenant.ID, Imported: len(rows)})
		},
	}
	cmd.Flags().StringVar(&tenantCode, "tenant", "", "Código del tenant (requerido)")
	cmd.Flags().StringVar(&file, "file", "", "Ruta del CSV (requerido)")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Separador de columnas")
	cmd.Flags().BoolVar(&latin1, "latin1", false, "El archivo está en ISO-8859-1 (exportes de hoja de cálculo)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readServices lee filas codigo,nombre[,ubicacion]. Una primera fila cuyo código
// sea "codigo" o "code" se toma como encabezado. Filas vacías se omiten.
func readServices(r io.Reader, sep rune, latin1 bool) ([]dto.CreateServiceRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []dto.CreateServiceRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		if line == 1 && isHeader(rec[0]) {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 2 columnas: %w", line, domain.ErrInvalidInput)
		}
		row := dto.CreateServiceRequest{
			Code: strings.TrimSpace(rec[0]),
			Name: strings.TrimSpace(rec[1]),
		}
		if len(rec) > 2 {
			row.Location = strings.TrimSpace(rec[2])
		}
		if row.Code == "" || row.Name == "" {
			return nil, fmt.Errorf("línea %d: código y nombre son obligatorios: %w", line, domain.ErrInvalidInput)
		}
		out = append(out, row)
	}
	return out, nil
}

func isHeader(first string) bool {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(first, "\ufeff")))
	return h == "codigo" || h == "código" || h == "code"
}

// importServices hace upsert de todas las filas; un error revierte la carga completa.
func importServices(ctx context.Context, tx ports.TxRunner, tenantID string, rows []dto.CreateServiceRequest) error {
	return tx.Run(ctx, func(r ports.Repos) error {
		uc := usecase.NewServiceUseCase(r.Services, nil)
		for i, row := range rows {
			if _, err := uc.Import(ctx, tenantID, row); err != nil {
				return fmt.Errorf("fila %d (%s): %w", i+1, row.Code, err)
			}
		}
		return nil
	})
}
