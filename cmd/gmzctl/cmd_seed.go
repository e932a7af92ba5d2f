package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/usecase"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
)

var seedCharset string

var seedCmd = &cobra.Command{
	Use:   "seed [archivo]",
	Short: "Carga categorías desde un archivo de texto",
	Long: `Lee un archivo con una categoría por línea en formato "Tipo;Nombre"
(Tipo es Inventory o RawMaterial). Las líneas vacías y las que empiezan por #
se ignoran. Las categorías que ya existen se omiten.

Los exportes de hojas de cálculo en Windows suelen venir en ISO-8859-1: use
--charset latin1 para decodificarlos.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCharset, "charset", "utf-8", "codificación del archivo: utf-8 | latin1")
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("abrir %s: %w", args[0], err)
	}
	defer f.Close()

	reqs, err := parseCategories(f, seedCharset)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	uc := usecase.NewCategoryUseCase(postgres.NewCategoryRepository(pool))
	var created, skipped int
	for _, req := range reqs {
		if _, err := uc.Create(ctx, req); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				log.Debug().Str("name", req.Name).Str("type", req.Type).Msg("categoría existente, se omite")
				skipped++
				continue
			}
			return fmt.Errorf("categoría %q: %w", req.Name, err)
		}
		created++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "creadas %d, omitidas %d\n", created, skipped)
	return nil
}

// parseCategories decodifica r según charset y devuelve una solicitud por línea válida.
func parseCategories(r io.Reader, charset string) ([]dto.CreateCategoryRequest, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado: %s", charset)
	}

	var out []dto.CreateCategoryRequest
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		typ, name, ok := strings.Cut(text, ";")
		typ, name = strings.TrimSpace(typ), strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("línea %d: se esperaba \"Tipo;Nombre\"", line)
		}
		if !entity.ValidCategoryType(typ) {
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", line, typ)
		}
		out = append(out, dto.CreateCategoryRequest{Name: name, Type: typ})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	return out, nil
}
