package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CampanaService interface {
	Crear(ctx context.Context, req dto.CrearCampanaRequest) (*dto.CampanaResponse, error)
	// Listar filters by year when anio > 0.
	Listar(ctx context.Context, anio int) ([]dto.CampanaResponse, error)
	ObtenerTablero(ctx context.Context, id uuid.UUID) (*dto.TableroResponse, error)
	// ActualizarCeldas upserts by (fila, columna); the last entry for a cell wins.
	ActualizarCeldas(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarCeldasRequest) (*dto.TableroResponse, error)
	EliminarCelda(ctx context.Context, campanaID, celdaID uuid.UUID) error
	// ExportarExcel returns the xlsx grid and a file name for it.
	ExportarExcel(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type campanaService struct {
	repo repository.CampanaRepository
}

func NewCampanaService(repo repository.CampanaRepository) CampanaService {
	return &campanaService{repo: repo}
}

func mapCampana(c model.Campana) dto.CampanaResponse {
	return dto.CampanaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Anio:        c.Anio,
		Descripcion: c.Descripcion,
		Activa:      c.Activa,
		CreatedAt:   c.CreatedAt,
	}
}

func (s *campanaService) Crear(ctx context.Context, req dto.CrearCampanaRequest) (*dto.CampanaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	existing, err := s.repo.FindByNombreAnio(ctx, nombre, req.Anio)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe la campana %s %d", ErrDuplicado, nombre, req.Anio)
	}
	c := &model.Campana{
		Nombre:      nombre,
		Anio:        req.Anio,
		Descripcion: limpio(req.Descripcion),
		Activa:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, traducir(err, "campana")
	}
	resp := mapCampana(*c)
	return &resp, nil
}

func (s *campanaService) Listar(ctx context.Context, anio int) ([]dto.CampanaResponse, error) {
	list, err := s.repo.List(ctx, anio)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CampanaResponse, 0, len(list))
	for _, c := range list {
		out = append(out, mapCampana(c))
	}
	return out, nil
}

// armarTablero collects row and column labels in first-appearance order.
func armarTablero(c model.Campana, celdas []model.CampanaCelda) *dto.TableroResponse {
	sort.SliceStable(celdas, func(i, j int) bool { return celdas[i].Orden < celdas[j].Orden })
	t := &dto.TableroResponse{
		Campana:  mapCampana(c),
		Filas:    []string{},
		Columnas: []string{},
		Celdas:   make([]dto.CeldaResponse, 0, len(celdas)),
	}
	vistasF := map[string]bool{}
	vistasC := map[string]bool{}
	for _, cel := range celdas {
		if !vistasF[cel.Fila] {
			vistasF[cel.Fila] = true
			t.Filas = append(t.Filas, cel.Fila)
		}
		if !vistasC[cel.Columna] {
			vistasC[cel.Columna] = true
			t.Columnas = append(t.Columnas, cel.Columna)
		}
		t.Celdas = append(t.Celdas, dto.CeldaResponse{
			ID:             cel.ID.String(),
			Fila:           cel.Fila,
			Columna:        cel.Columna,
			Valor:          cel.Valor,
			Estado:         cel.Estado,
			Nota:           cel.Nota,
			ActualizadoPor: uuidStr(cel.ActualizadoPor),
			UpdatedAt:      cel.UpdatedAt,
		})
	}
	return t
}

func (s *campanaService) tablero(ctx context.Context, id uuid.UUID) (*model.Campana, []model.CampanaCelda, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, traducir(err, "campana")
	}
	celdas, err := s.repo.ListCeldas(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, celdas, nil
}

func (s *campanaService) ObtenerTablero(ctx context.Context, id uuid.UUID) (*dto.TableroResponse, error) {
	c, celdas, err := s.tablero(ctx, id)
	if err != nil {
		return nil, err
	}
	return armarTablero(*c, celdas), nil
}

func (s *campanaService) ActualizarCeldas(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarCeldasRequest) (*dto.TableroResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "campana")
	}
	if !c.Activa {
		return nil, invalido("la campana %s esta cerrada", c.Nombre)
	}

	type clave struct{ fila, columna string }
	pos := map[clave]int{}
	uid := usuarioID
	celdas := make([]model.CampanaCelda, 0, len(req.Celdas))
	for i, in := range req.Celdas {
		k := clave{strings.TrimSpace(in.Fila), strings.TrimSpace(in.Columna)}
		if k.fila == "" || k.columna == "" {
			return nil, invalido("celdas[%d]: fila y columna son obligatorias", i)
		}
		estado := in.Estado
		switch estado {
		case "":
			estado = model.CeldaPendiente
		case model.CeldaPendiente, model.CeldaEnProceso, model.CeldaCompletado:
		default:
			return nil, invalido("celdas[%d]: estado %q desconocido", i, in.Estado)
		}
		cel := model.CampanaCelda{
			CampanaID:      id,
			Fila:           k.fila,
			Columna:        k.columna,
			Valor:          strings.TrimSpace(in.Valor),
			Estado:         estado,
			Nota:           limpio(in.Nota),
			ActualizadoPor: &uid,
		}
		if j, ok := pos[k]; ok {
			celdas[j] = cel
			continue
		}
		pos[k] = len(celdas)
		celdas = append(celdas, cel)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpsertCeldasTx(tx, celdas)
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerTablero(ctx, id)
}

func (s *campanaService) EliminarCelda(ctx context.Context, campanaID, celdaID uuid.UUID) error {
	return traducir(s.repo.DeleteCelda(ctx, campanaID, celdaID), "celda")
}

func (s *campanaService) ExportarExcel(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	c, celdas, err := s.tablero(ctx, id)
	if err != nil {
		return nil, "", err
	}
	t := armarTablero(*c, celdas)

	type clave struct{ fila, columna string }
	valores := make(map[clave]string, len(celdas))
	detalle := make([][]any, 0, len(celdas))
	for _, cel := range celdas {
		texto := cel.Valor
		if texto == "" {
			texto = cel.Estado
		}
		valores[clave{cel.Fila, cel.Columna}] = texto
		nota := ""
		if cel.Nota != nil {
			nota = *cel.Nota
		}
		detalle = append(detalle, []any{cel.Fila, cel.Columna, cel.Valor, cel.Estado, nota})
	}

	grid := make([][]any, 0, len(t.Filas))
	for _, f := range t.Filas {
		row := make([]any, 0, len(t.Columnas)+1)
		row = append(row, f)
		for _, col := range t.Columnas {
			row = append(row, valores[clave{f, col}])
		}
		grid = append(grid, row)
	}

	data, err := infra.EscribirXLSX(
		infra.Hoja{Nombre: "Tablero", Encabezados: append([]string{""}, t.Columnas...), Filas: grid},
		infra.Hoja{Nombre: "Detalle", Encabezados: []string{"fila", "columna", "valor", "estado", "nota"}, Filas: detalle},
	)
	if err != nil {
		return nil, "", err
	}
	nombre := fmt.Sprintf("campana-%s-%d.xlsx", strings.ReplaceAll(strings.ToLower(c.Nombre), " ", "-"), c.Anio)
	return data, nombre, nil
}
