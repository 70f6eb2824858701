package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Acciones registradas en HistorialHerramienta.
const (
	AccionAlta         = "alta"
	AccionAsignacion   = "asignacion"
	AccionDevolucion   = "devolucion"
	AccionCambioEstado = "cambio_estado"
)

type HerramientaService interface {
	CrearTipo(ctx context.Context, usuarioID uuid.UUID, req dto.CrearTipoHerramientaRequest) (*dto.TipoHerramientaResponse, error)
	ListarTipos(ctx context.Context, incluirInactivos bool) ([]dto.TipoHerramientaResponse, error)
	ActualizarTipo(ctx context.Context, id uuid.UUID, req dto.ActualizarTipoHerramientaRequest) (*dto.TipoHerramientaResponse, error)
	CrearUnidades(ctx context.Context, usuarioID, tipoID uuid.UUID, req dto.CrearUnidadesRequest) ([]dto.UnidadHerramientaResponse, error)
	ListarUnidades(ctx context.Context, filter dto.UnidadFilter) (*dto.ListResponse[dto.UnidadHerramientaResponse], error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.UnidadHerramientaResponse, error)
	Asignar(ctx context.Context, usuarioID, id uuid.UUID, req dto.AsignarHerramientaRequest) (*dto.UnidadHerramientaResponse, error)
	Devolver(ctx context.Context, usuarioID, id uuid.UUID, req dto.DevolverHerramientaRequest) (*dto.UnidadHerramientaResponse, error)
	CambiarEstado(ctx context.Context, usuarioID, id uuid.UUID, req dto.CambiarEstadoHerramientaRequest) (*dto.UnidadHerramientaResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialHerramientaResponse, error)
	CodigoBarrasPNG(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type herramientaService struct {
	repo       repository.HerramientaRepository
	usuarios   repository.UsuarioRepository
	camionetas repository.CamionetaRepository
	now        func() time.Time
}

func NewHerramientaService(repo repository.HerramientaRepository, usuarios repository.UsuarioRepository, camionetas repository.CamionetaRepository) HerramientaService {
	return &herramientaService{repo: repo, usuarios: usuarios, camionetas: camionetas, now: time.Now}
}

func mapTipo(t model.TipoHerramienta, conteo map[string]int64) dto.TipoHerramientaResponse {
	resp := dto.TipoHerramientaResponse{
		ID:          t.ID.String(),
		Nombre:      t.Nombre,
		Prefijo:     t.Prefijo,
		Descripcion: t.Descripcion,
		ArticuloID:  uuidStr(t.ArticuloID),
		Activo:      t.Activo,
		PorEstado:   make(map[string]int64, len(model.EstadosHerramienta)),
	}
	for _, e := range model.EstadosHerramienta {
		resp.PorEstado[e] = conteo[e]
		resp.Total += conteo[e]
	}
	return resp
}

func mapUnidad(u model.UnidadHerramienta) dto.UnidadHerramientaResponse {
	resp := dto.UnidadHerramientaResponse{
		ID:              u.ID.String(),
		Codigo:          u.Codigo,
		TipoID:          u.TipoID.String(),
		Estado:          u.Estado,
		UsuarioID:       uuidStr(u.UsuarioID),
		EquipoID:        uuidStr(u.EquipoID),
		CamionetaID:     uuidStr(u.CamionetaID),
		FechaAsignacion: u.FechaAsignacion,
		Observaciones:   u.Observaciones,
	}
	if u.Tipo != nil {
		resp.TipoNombre = u.Tipo.Nombre
	}
	if u.Usuario != nil {
		resp.UsuarioNombre = &u.Usuario.Nombre
	}
	if u.Camioneta != nil {
		resp.CamionetaNombre = &u.Camioneta.Nombre
	}
	return resp
}

func mapUnidades(list []model.UnidadHerramienta) []dto.UnidadHerramientaResponse {
	out := make([]dto.UnidadHerramientaResponse, 0, len(list))
	for _, u := range list {
		out = append(out, mapUnidad(u))
	}
	return out
}

func (s *herramientaService) CrearTipo(ctx context.Context, usuarioID uuid.UUID, req dto.CrearTipoHerramientaRequest) (*dto.TipoHerramientaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	prefijo := strings.ToUpper(strings.TrimSpace(req.Prefijo))
	if len(prefijo) < 2 || len(prefijo) > 6 || strings.Trim(prefijo, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "" {
		return nil, invalido("prefijo debe tener de 2 a 6 letras")
	}
	if err := s.libre(s.repo.FindTipoByNombre(ctx, nombre)); err != nil {
		return nil, fmt.Errorf("%w: tipo %s", err, nombre)
	}
	if err := s.libre(s.repo.FindTipoByPrefijo(ctx, prefijo)); err != nil {
		return nil, fmt.Errorf("%w: prefijo %s", err, prefijo)
	}
	articuloID, err := parseUUIDOpt("articulo_id", req.ArticuloID)
	if err != nil {
		return nil, err
	}

	t := &model.TipoHerramienta{
		Nombre:      nombre,
		Prefijo:     prefijo,
		Descripcion: limpio(req.Descripcion),
		ArticuloID:  articuloID,
		Activo:      true,
	}
	var unidades []model.UnidadHerramienta
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTipoTx(tx, t); err != nil {
			return err
		}
		if req.CantidadInicial == 0 {
			return nil
		}
		var err error
		unidades, err = s.crearUnidadesTx(tx, usuarioID, t, req.CantidadInicial, nil)
		return err
	})
	if err != nil {
		return nil, traducir(err, "tipo de herramienta")
	}
	resp := mapTipo(*t, map[string]int64{model.HerramientaDisponible: int64(len(unidades))})
	return &resp, nil
}

// libre turns a successful lookup into ErrDuplicado.
func (s *herramientaService) libre(_ *model.TipoHerramienta, err error) error {
	if err == nil {
		return ErrDuplicado
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *herramientaService) crearUnidadesTx(tx *gorm.DB, usuarioID uuid.UUID, t *model.TipoHerramienta, cantidad int, obs *string) ([]model.UnidadHerramienta, error) {
	siguiente, err := s.repo.SiguienteNumeroTx(tx, t.ID)
	if err != nil {
		return nil, err
	}
	unidades := make([]model.UnidadHerramienta, cantidad)
	for i := range unidades {
		unidades[i] = model.UnidadHerramienta{
			Codigo:        t.CodigoUnidad(siguiente + i),
			TipoID:        t.ID,
			Estado:        model.HerramientaDisponible,
			Observaciones: obs,
		}
	}
	if err := s.repo.CreateUnidadesTx(tx, unidades); err != nil {
		return nil, err
	}
	uid := usuarioID
	for i := range unidades {
		unidades[i].Tipo = t
		h := &model.HistorialHerramienta{
			UnidadID:     unidades[i].ID,
			Accion:       AccionAlta,
			EstadoNuevo:  model.HerramientaDisponible,
			RealizadoPor: &uid,
		}
		if err := s.repo.CreateHistorialTx(tx, h); err != nil {
			return nil, err
		}
	}
	return unidades, nil
}

func (s *herramientaService) ListarTipos(ctx context.Context, incluirInactivos bool) ([]dto.TipoHerramientaResponse, error) {
	tipos, err := s.repo.ListTipos(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	conteo, err := s.repo.ConteoPorTipo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TipoHerramientaResponse, 0, len(tipos))
	for _, t := range tipos {
		out = append(out, mapTipo(t, conteo[t.ID]))
	}
	return out, nil
}

func (s *herramientaService) ActualizarTipo(ctx context.Context, id uuid.UUID, req dto.ActualizarTipoHerramientaRequest) (*dto.TipoHerramientaResponse, error) {
	t, err := s.repo.FindTipoByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "tipo de herramienta")
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		existing, err := s.repo.FindTipoByNombre(ctx, nombre)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != t.ID {
			return nil, fmt.Errorf("%w: tipo %s", ErrDuplicado, nombre)
		}
		t.Nombre = nombre
	}
	if req.Descripcion != nil {
		t.Descripcion = limpio(req.Descripcion)
	}
	if req.ArticuloID != nil {
		if t.ArticuloID, err = parseUUIDOpt("articulo_id", req.ArticuloID); err != nil {
			return nil, err
		}
	}
	if req.Activo != nil {
		t.Activo = *req.Activo
	}
	if err := s.repo.UpdateTipo(ctx, t); err != nil {
		return nil, traducir(err, "tipo de herramienta")
	}
	conteo, err := s.repo.ConteoPorTipo(ctx)
	if err != nil {
		return nil, err
	}
	resp := mapTipo(*t, conteo[t.ID])
	return &resp, nil
}

func (s *herramientaService) CrearUnidades(ctx context.Context, usuarioID, tipoID uuid.UUID, req dto.CrearUnidadesRequest) ([]dto.UnidadHerramientaResponse, error) {
	if req.Cantidad < 1 || req.Cantidad > 500 {
		return nil, invalido("cantidad debe estar entre 1 y 500")
	}
	t, err := s.repo.FindTipoByID(ctx, tipoID)
	if err != nil {
		return nil, traducir(err, "tipo de herramienta")
	}
	if !t.Activo {
		return nil, invalido("el tipo %s esta inactivo", t.Nombre)
	}
	var unidades []model.UnidadHerramienta
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		unidades, err = s.crearUnidadesTx(tx, usuarioID, t, req.Cantidad, limpio(req.Observaciones))
		return err
	})
	if err != nil {
		return nil, traducir(err, "unidad de herramienta")
	}
	return mapUnidades(unidades), nil
}

func (s *herramientaService) ListarUnidades(ctx context.Context, filter dto.UnidadFilter) (*dto.ListResponse[dto.UnidadHerramientaResponse], error) {
	filter.Normalizar()
	list, total, err := s.repo.ListUnidades(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(mapUnidades(list), total, filter.Paginacion), nil
}

func (s *herramientaService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.UnidadHerramientaResponse, error) {
	u, err := s.repo.FindUnidadByCodigo(ctx, strings.ToUpper(strings.TrimSpace(codigo)))
	if err != nil {
		return nil, traducir(err, "herramienta")
	}
	resp := mapUnidad(*u)
	return &resp, nil
}

// transicionar locks the unit row, lets aplicar check and mutate the locked
// copy, then persists it together with its history row. The history row keeps
// the holders the unit had before aplicar ran.
func (s *herramientaService) transicionar(ctx context.Context, usuarioID uuid.UUID, snap *model.UnidadHerramienta, accion, estado string, nota *string, aplicar func(u *model.UnidadHerramienta) error) (*model.UnidadHerramienta, error) {
	var u *model.UnidadHerramienta
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if u, err = s.repo.FindUnidadByIDTx(tx, snap.ID); err != nil {
			return err
		}
		if !model.PuedeTransicionarHerramienta(u.Estado, estado) {
			return fmt.Errorf("%w: %s -> %s", ErrTransicionInvalida, u.Estado, estado)
		}
		if err := aplicar(u); err != nil {
			return err
		}
		uid := usuarioID
		h := &model.HistorialHerramienta{
			UnidadID:       u.ID,
			Accion:         accion,
			EstadoAnterior: snap.Estado,
			EstadoNuevo:    estado,
			UsuarioID:      snap.UsuarioID,
			EquipoID:       snap.EquipoID,
			CamionetaID:    snap.CamionetaID,
			RealizadoPor:   &uid,
			Nota:           limpio(nota),
		}
		anterior := snap.Estado
		u.Estado = estado
		if err := s.repo.UpdateUnidadTx(tx, u, anterior); err != nil {
			if errors.Is(err, repository.ErrEstadoCambiado) {
				return fmt.Errorf("%w: la herramienta %s cambio de estado", ErrTransicionInvalida, u.Codigo)
			}
			return err
		}
		return s.repo.CreateHistorialTx(tx, h)
	})
	if err != nil {
		return nil, traducir(err, "herramienta")
	}
	u.Tipo = snap.Tipo
	return u, nil
}

func (s *herramientaService) unidad(ctx context.Context, id uuid.UUID) (*model.UnidadHerramienta, error) {
	u, err := s.repo.FindUnidadByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "herramienta")
	}
	return u, nil
}

func (s *herramientaService) Asignar(ctx context.Context, usuarioID, id uuid.UUID, req dto.AsignarHerramientaRequest) (*dto.UnidadHerramientaResponse, error) {
	responsableID, err := parseUUIDOpt("usuario_id", req.UsuarioID)
	if err != nil {
		return nil, err
	}
	equipoID, err := parseUUIDOpt("equipo_id", req.EquipoID)
	if err != nil {
		return nil, err
	}
	camionetaID, err := parseUUIDOpt("camioneta_id", req.CamionetaID)
	if err != nil {
		return nil, err
	}
	if responsableID == nil && equipoID == nil && camionetaID == nil {
		return nil, invalido("indique usuario_id, equipo_id o camioneta_id")
	}

	snap, err := s.unidad(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Estado != model.HerramientaDisponible {
		return nil, fmt.Errorf("%w: la herramienta %s esta %s", ErrTransicionInvalida, snap.Codigo, snap.Estado)
	}

	var usr *model.Usuario
	if responsableID != nil {
		if usr, err = s.usuarios.FindByID(ctx, *responsableID); err != nil {
			return nil, traducir(err, "usuario")
		}
		if !usr.Activo {
			return nil, invalido("el usuario %s esta inactivo", usr.Nombre)
		}
	}
	var cam *model.Camioneta
	if camionetaID != nil {
		if cam, err = s.camionetas.FindByID(ctx, *camionetaID); err != nil {
			return nil, traducir(err, "camioneta")
		}
		if !cam.Activo {
			return nil, invalido("la camioneta %s esta inactiva", cam.Nombre)
		}
		if equipoID == nil {
			equipoID = cam.EquipoID
		}
	}

	now := s.now()
	u, err := s.transicionar(ctx, usuarioID, snap, AccionAsignacion, model.HerramientaAsignada, req.Nota,
		func(u *model.UnidadHerramienta) error {
			if !mismoResguardo(u, snap) {
				return fmt.Errorf("%w: la herramienta %s esta %s", ErrTransicionInvalida, u.Codigo, u.Estado)
			}
			u.UsuarioID = responsableID
			u.EquipoID = equipoID
			u.CamionetaID = camionetaID
			u.FechaAsignacion = &now
			u.Usuario, u.Camioneta = usr, cam
			return nil
		})
	if err != nil {
		return nil, err
	}
	resp := mapUnidad(*u)
	return &resp, nil
}

func (s *herramientaService) Devolver(ctx context.Context, usuarioID, id uuid.UUID, req dto.DevolverHerramientaRequest) (*dto.UnidadHerramientaResponse, error) {
	snap, err := s.unidad(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Estado != model.HerramientaAsignada {
		return nil, fmt.Errorf("%w: la herramienta %s no esta asignada", ErrTransicionInvalida, snap.Codigo)
	}
	u, err := s.transicionar(ctx, usuarioID, snap, AccionDevolucion, model.HerramientaDisponible, req.Nota,
		func(u *model.UnidadHerramienta) error {
			if !mismoResguardo(u, snap) {
				return fmt.Errorf("%w: la herramienta %s cambio de responsable", ErrTransicionInvalida, u.Codigo)
			}
			u.LiberarResponsables()
			return nil
		})
	if err != nil {
		return nil, err
	}
	resp := mapUnidad(*u)
	return &resp, nil
}

func (s *herramientaService) CambiarEstado(ctx context.Context, usuarioID, id uuid.UUID, req dto.CambiarEstadoHerramientaRequest) (*dto.UnidadHerramientaResponse, error) {
	snap, err := s.unidad(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Estado == model.HerramientaAsignada {
		return nil, invalido("use la asignacion para marcar una herramienta como asignada")
	}
	u, err := s.transicionar(ctx, usuarioID, snap, AccionCambioEstado, req.Estado, req.Nota,
		func(u *model.UnidadHerramienta) error {
			if !mismoResguardo(u, snap) {
				return fmt.Errorf("%w: la herramienta %s cambio de estado", ErrTransicionInvalida, u.Codigo)
			}
			if u.Estado == model.HerramientaAsignada {
				u.LiberarResponsables()
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	resp := mapUnidad(*u)
	return &resp, nil
}

// mismoResguardo reports whether the locked row still has the estado and
// holders read before the transaction.
func mismoResguardo(u, snap *model.UnidadHerramienta) bool {
	return u.Estado == snap.Estado &&
		mismoID(u.UsuarioID, snap.UsuarioID) &&
		mismoID(u.EquipoID, snap.EquipoID) &&
		mismoID(u.CamionetaID, snap.CamionetaID)
}

func mismoID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *herramientaService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialHerramientaResponse, error) {
	if _, err := s.unidad(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.repo.ListHistorial(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistorialHerramientaResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.HistorialHerramientaResponse{
			ID:             h.ID.String(),
			Accion:         h.Accion,
			EstadoAnterior: h.EstadoAnterior,
			EstadoNuevo:    h.EstadoNuevo,
			UsuarioID:      uuidStr(h.UsuarioID),
			EquipoID:       uuidStr(h.EquipoID),
			CamionetaID:    uuidStr(h.CamionetaID),
			RealizadoPor:   uuidStr(h.RealizadoPor),
			Nota:           h.Nota,
			CreatedAt:      h.CreatedAt,
		})
	}
	return out, nil
}

func (s *herramientaService) CodigoBarrasPNG(ctx context.Context, id uuid.UUID) ([]byte, error) {
	u, err := s.unidad(ctx, id)
	if err != nil {
		return nil, err
	}
	return infra.BarcodePNG(u.Codigo)
}
