package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"inventario3g/internal/codigobarras"
	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	cacheArticuloPrefix = "articulo:codigo:"
	cacheArticuloTTL    = 4 * time.Hour
)

// Import row error codes.
const (
	ImportNombreRequerido = "NOMBRE_REQUERIDO"
	ImportEANInvalido     = "EAN_INVALIDO"
	ImportNumeroInvalido  = "NUMERO_INVALIDO"
	ImportErrorGuardado   = "ERROR_GUARDADO"
)

// Columnas de la hoja de importacion/exportacion de articulos.
var columnasArticulo = []string{"codigo_ean13", "nombre", "unidad", "stock_actual", "stock_minimo", "costo_unitario", "categoria", "ubicacion"}

type ArticuloService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error)
	Listar(ctx context.Context, filter dto.ArticuloFilter) (*dto.ListResponse[dto.ArticuloResponse], error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ArticuloResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	AsignarProveedor(ctx context.Context, usuarioID, articuloID uuid.UUID, req dto.AsignarProveedorRequest) ([]dto.ArticuloProveedorResponse, error)
	QuitarProveedor(ctx context.Context, articuloID, proveedorID uuid.UUID) error
	ListarProveedores(ctx context.Context, articuloID uuid.UUID) ([]dto.ArticuloProveedorResponse, error)
	HistorialCostos(ctx context.Context, articuloID uuid.UUID) ([]dto.HistorialCostoResponse, error)

	CodigoBarrasPNG(ctx context.Context, id uuid.UUID) ([]byte, error)
	ExportarExcel(ctx context.Context) ([]byte, error)
	ImportarExcel(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error)
	Alertas(ctx context.Context) ([]dto.ArticuloResponse, error)
}

type articuloService struct {
	articulos   repository.ArticuloRepository
	proveedores repository.ProveedorRepository
	movimientos repository.MovimientoRepository
	folios      Foliador
	rdb         *redis.Client
}

func NewArticuloService(
	articulos repository.ArticuloRepository,
	proveedores repository.ProveedorRepository,
	movimientos repository.MovimientoRepository,
	folios Foliador,
	rdb *redis.Client,
) ArticuloService {
	return &articuloService{
		articulos:   articulos,
		proveedores: proveedores,
		movimientos: movimientos,
		folios:      folios,
		rdb:         rdb,
	}
}

func mapArticulo(a model.Articulo) dto.ArticuloResponse {
	resp := dto.ArticuloResponse{
		ID:             a.ID.String(),
		CodigoEAN13:    a.CodigoEAN13,
		Nombre:         a.Nombre,
		Descripcion:    a.Descripcion,
		CategoriaID:    uuidStr(a.CategoriaID),
		UbicacionID:    uuidStr(a.UbicacionID),
		Unidad:         a.Unidad,
		StockActual:    a.StockActual,
		StockMinimo:    a.StockMinimo,
		StockMaximo:    a.StockMaximo,
		CostoUnitario:  a.CostoUnitario,
		TieneImagen:    a.ImagenPath != nil,
		TieneMiniatura: a.MiniaturaPath != nil,
		EsHerramienta:  a.EsHerramienta,
		BajoStock:      a.BajoStock(),
		Activo:         a.Activo,
	}
	if a.Categoria != nil {
		resp.CategoriaNombre = &a.Categoria.Nombre
	}
	if a.Ubicacion != nil {
		resp.UbicacionCodigo = &a.Ubicacion.Codigo
	}
	if len(a.Proveedores) > 0 {
		resp.Proveedores = mapLinks(a.Proveedores)
	}
	return resp
}

func mapLinks(links []model.ArticuloProveedor) []dto.ArticuloProveedorResponse {
	out := make([]dto.ArticuloProveedorResponse, 0, len(links))
	for _, l := range links {
		r := dto.ArticuloProveedorResponse{
			ProveedorID:     l.ProveedorID.String(),
			Costo:           l.Costo,
			CodigoProveedor: l.CodigoProveedor,
			EsPreferido:     l.EsPreferido,
		}
		if l.Proveedor != nil {
			r.ProveedorNombre = l.Proveedor.Nombre
		}
		out = append(out, r)
	}
	return out
}

// invalidarCacheArticulo drops the lookup cache entry of an EAN. Nil-safe.
func invalidarCacheArticulo(ctx context.Context, rdb *redis.Client, ean *string) {
	if rdb == nil || ean == nil {
		return
	}
	if err := rdb.Del(ctx, cacheArticuloPrefix+*ean).Err(); err != nil {
		log.Warn().Err(err).Str("ean", *ean).Msg("no se pudo invalidar cache de articulo")
	}
}

func validarStock(minimo int, maximo *int) error {
	if minimo < 0 {
		return invalido("stock_minimo no puede ser negativo")
	}
	if maximo != nil && *maximo < minimo {
		return invalido("stock_maximo debe ser mayor o igual a stock_minimo")
	}
	return nil
}

// normalizarEAN validates a client supplied EAN-13 and checks it is unused.
func (s *articuloService) normalizarEAN(ctx context.Context, ean string, excepto uuid.UUID) (string, error) {
	ean = strings.TrimSpace(ean)
	if !codigobarras.EsEAN13Valido(ean) {
		return "", invalido("codigo_ean13 %s no es un EAN-13 valido", ean)
	}
	existing, err := s.articulos.FindByEAN(ctx, ean)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if existing != nil && existing.ID != excepto {
		return "", fmt.Errorf("%w: el codigo %s ya pertenece a %s", ErrDuplicado, ean, existing.Nombre)
	}
	return ean, nil
}

func (s *articuloService) generarEAN(ctx context.Context) (string, error) {
	seq, err := s.articulos.SiguienteSecuenciaEAN(ctx)
	if err != nil {
		return "", err
	}
	return codigobarras.GenerarEAN13Interno(seq)
}

func (s *articuloService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error) {
	if err := validarStock(req.StockMinimo, req.StockMaximo); err != nil {
		return nil, err
	}
	if req.StockActual < 0 {
		return nil, invalido("stock_actual no puede ser negativo")
	}
	if req.CostoUnitario.IsNegative() {
		return nil, invalido("costo_unitario no puede ser negativo")
	}
	categoriaID, err := parseUUIDOpt("categoria_id", req.CategoriaID)
	if err != nil {
		return nil, err
	}
	ubicacionID, err := parseUUIDOpt("ubicacion_id", req.UbicacionID)
	if err != nil {
		return nil, err
	}

	var ean string
	if req.CodigoEAN13 != nil && strings.TrimSpace(*req.CodigoEAN13) != "" {
		ean, err = s.normalizarEAN(ctx, *req.CodigoEAN13, uuid.Nil)
	} else {
		ean, err = s.generarEAN(ctx)
	}
	if err != nil {
		return nil, err
	}

	unidad := strings.TrimSpace(req.Unidad)
	if unidad == "" {
		unidad = "pieza"
	}
	a := &model.Articulo{
		CodigoEAN13:   &ean,
		Nombre:        strings.TrimSpace(req.Nombre),
		Descripcion:   limpio(req.Descripcion),
		CategoriaID:   categoriaID,
		UbicacionID:   ubicacionID,
		Unidad:        unidad,
		StockMinimo:   req.StockMinimo,
		StockMaximo:   req.StockMaximo,
		CostoUnitario: req.CostoUnitario,
		EsHerramienta: req.EsHerramienta,
		Activo:        true,
	}

	uid := usuarioID
	err = runTx(ctx, s.articulos.DB(), func(tx *gorm.DB) error {
		if err := s.articulos.CreateTx(tx, a); err != nil {
			return err
		}
		if req.StockActual == 0 {
			return nil
		}
		m := model.Movimiento{
			Folio:      s.folios.Nuevo(PrefijoFolioMovimiento),
			Tipo:       model.MovEntrada,
			ArticuloID: a.ID,
			Cantidad:   req.StockActual,
			UsuarioID:  &uid,
			Motivo:     "inventario inicial",
		}
		if err := s.movimientos.AplicarTx(tx, &m); err != nil {
			return err
		}
		a.StockActual = m.StockNuevo
		return nil
	})
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	resp := mapArticulo(*a)
	return &resp, nil
}

func (s *articuloService) Listar(ctx context.Context, filter dto.ArticuloFilter) (*dto.ListResponse[dto.ArticuloResponse], error) {
	filter.Normalizar()
	list, total, err := s.articulos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArticuloResponse, 0, len(list))
	for _, a := range list {
		out = append(out, mapArticulo(a))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *articuloService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error) {
	a, err := s.articulos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	resp := mapArticulo(*a)
	return &resp, nil
}

// ObtenerPorCodigo looks an article up by EAN-13, served from Redis when cached.
func (s *articuloService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ArticuloResponse, error) {
	codigo = strings.TrimSpace(codigo)
	key := cacheArticuloPrefix + codigo
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached dto.ArticuloResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	a, err := s.articulos.FindByEAN(ctx, codigo)
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	resp := mapArticulo(*a)
	if s.rdb != nil && a.Activo {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, raw, cacheArticuloTTL).Err(); err != nil {
				log.Warn().Err(err).Str("ean", codigo).Msg("no se pudo cachear articulo")
			}
		}
	}
	return &resp, nil
}

func (s *articuloService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error) {
	a, err := s.articulos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	eanAnterior := a.CodigoEAN13

	if req.CodigoEAN13 != nil {
		ean, err := s.normalizarEAN(ctx, *req.CodigoEAN13, a.ID)
		if err != nil {
			return nil, err
		}
		a.CodigoEAN13 = &ean
	}
	if req.Nombre != nil {
		a.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		a.Descripcion = limpio(req.Descripcion)
	}
	if req.CategoriaID != nil {
		if a.CategoriaID, err = parseUUIDOpt("categoria_id", req.CategoriaID); err != nil {
			return nil, err
		}
		a.Categoria = nil
	}
	if req.UbicacionID != nil {
		if a.UbicacionID, err = parseUUIDOpt("ubicacion_id", req.UbicacionID); err != nil {
			return nil, err
		}
		a.Ubicacion = nil
	}
	if req.Unidad != nil && strings.TrimSpace(*req.Unidad) != "" {
		a.Unidad = strings.TrimSpace(*req.Unidad)
	}
	if req.StockMinimo != nil {
		a.StockMinimo = *req.StockMinimo
	}
	if req.StockMaximo != nil {
		a.StockMaximo = req.StockMaximo
	}
	if err := validarStock(a.StockMinimo, a.StockMaximo); err != nil {
		return nil, err
	}
	if req.CostoUnitario != nil {
		if req.CostoUnitario.IsNegative() {
			return nil, invalido("costo_unitario no puede ser negativo")
		}
		a.CostoUnitario = *req.CostoUnitario
	}
	if req.EsHerramienta != nil {
		a.EsHerramienta = *req.EsHerramienta
	}

	if err := s.articulos.Update(ctx, a); err != nil {
		return nil, traducir(err, "articulo")
	}
	invalidarCacheArticulo(ctx, s.rdb, eanAnterior)
	invalidarCacheArticulo(ctx, s.rdb, a.CodigoEAN13)
	resp := mapArticulo(*a)
	return &resp, nil
}

func (s *articuloService) setActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	a, err := s.articulos.FindByID(ctx, id)
	if err != nil {
		return traducir(err, "articulo")
	}
	if err := s.articulos.SetActivo(ctx, id, activo); err != nil {
		return traducir(err, "articulo")
	}
	invalidarCacheArticulo(ctx, s.rdb, a.CodigoEAN13)
	return nil
}

func (s *articuloService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, false)
}

func (s *articuloService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, true)
}

// AsignarProveedor upserts the article/provider link. A cost change writes a
// HistorialCosto row; es_preferido unsets the flag on every other link.
func (s *articuloService) AsignarProveedor(ctx context.Context, usuarioID, articuloID uuid.UUID, req dto.AsignarProveedorRequest) ([]dto.ArticuloProveedorResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, invalido("proveedor_id no es un UUID")
	}
	if req.Costo.IsNegative() {
		return nil, invalido("costo no puede ser negativo")
	}
	if _, err := s.articulos.FindByID(ctx, articuloID); err != nil {
		return nil, traducir(err, "articulo")
	}
	prov, err := s.proveedores.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	if !prov.Activo {
		return nil, invalido("el proveedor %s esta inactivo", prov.Nombre)
	}

	link, err := s.articulos.FindLink(ctx, articuloID, proveedorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var historial *model.HistorialCosto
	if link == nil {
		link = &model.ArticuloProveedor{ArticuloID: articuloID, ProveedorID: proveedorID}
	} else if !link.Costo.Equal(req.Costo) {
		uid := usuarioID
		historial = &model.HistorialCosto{
			ArticuloID:   articuloID,
			ProveedorID:  proveedorID,
			CostoAntes:   link.Costo,
			CostoDespues: req.Costo,
			Motivo:       "manual",
			UsuarioID:    &uid,
		}
	}
	link.Costo = req.Costo
	link.CodigoProveedor = limpio(req.CodigoProveedor)
	link.EsPreferido = req.EsPreferido
	link.Proveedor = nil

	err = runTx(ctx, s.articulos.DB(), func(tx *gorm.DB) error {
		if link.EsPreferido {
			if err := s.articulos.ClearPreferidoTx(tx, articuloID, proveedorID); err != nil {
				return err
			}
		}
		if err := s.articulos.SaveLinkTx(tx, link); err != nil {
			return err
		}
		if historial != nil {
			return s.articulos.CreateHistorialCostoTx(tx, historial)
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "proveedor de articulo")
	}
	return s.ListarProveedores(ctx, articuloID)
}

func (s *articuloService) QuitarProveedor(ctx context.Context, articuloID, proveedorID uuid.UUID) error {
	return traducir(s.articulos.DeleteLink(ctx, articuloID, proveedorID), "proveedor de articulo")
}

func (s *articuloService) ListarProveedores(ctx context.Context, articuloID uuid.UUID) ([]dto.ArticuloProveedorResponse, error) {
	links, err := s.articulos.ListLinks(ctx, articuloID)
	if err != nil {
		return nil, err
	}
	return mapLinks(links), nil
}

func (s *articuloService) HistorialCostos(ctx context.Context, articuloID uuid.UUID) ([]dto.HistorialCostoResponse, error) {
	list, err := s.articulos.ListHistorialCostos(ctx, articuloID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistorialCostoResponse, 0, len(list))
	for _, h := range list {
		r := dto.HistorialCostoResponse{
			ID:           h.ID.String(),
			ProveedorID:  h.ProveedorID.String(),
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			Motivo:       h.Motivo,
			UsuarioID:    uuidStr(h.UsuarioID),
			CreatedAt:    h.CreatedAt,
		}
		if h.Proveedor != nil {
			r.ProveedorNombre = h.Proveedor.Nombre
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *articuloService) CodigoBarrasPNG(ctx context.Context, id uuid.UUID) ([]byte, error) {
	a, err := s.articulos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	if a.CodigoEAN13 == nil {
		return nil, fmt.Errorf("%w: el articulo no tiene codigo de barras", ErrNoEncontrado)
	}
	return infra.BarcodePNG(*a.CodigoEAN13)
}

func (s *articuloService) ExportarExcel(ctx context.Context) ([]byte, error) {
	list, err := s.articulos.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	filas := make([][]any, 0, len(list))
	for _, a := range list {
		var ean, categoria, ubicacion string
		if a.CodigoEAN13 != nil {
			ean = *a.CodigoEAN13
		}
		if a.Categoria != nil {
			categoria = a.Categoria.Nombre
		}
		if a.Ubicacion != nil {
			ubicacion = a.Ubicacion.Codigo
		}
		costo, _ := a.CostoUnitario.Float64()
		filas = append(filas, []any{ean, a.Nombre, a.Unidad, a.StockActual, a.StockMinimo, costo, categoria, ubicacion})
	}
	return infra.EscribirXLSX(infra.Hoja{Nombre: "Articulos", Encabezados: columnasArticulo, Filas: filas})
}

// ImportarExcel upserts articles by EAN. Stock is never touched; rows that
// fail validation are reported and skipped.
func (s *articuloService) ImportarExcel(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error) {
	filas, err := infra.LeerXLSX(r)
	if err != nil {
		return nil, invalido("archivo xlsx ilegible: %v", err)
	}
	resp := &dto.ImportacionResponse{Errores: []dto.ErrorImportacion{}}
	fallo := func(fila int, codigo, msg string) {
		resp.Errores = append(resp.Errores, dto.ErrorImportacion{Fila: fila, Codigo: codigo, Mensaje: msg})
	}

	for _, f := range filas {
		nombre := strings.TrimSpace(f.Valores["nombre"])
		if nombre == "" {
			fallo(f.Numero, ImportNombreRequerido, "la columna nombre es obligatoria")
			continue
		}
		ean := strings.TrimSpace(f.Valores["codigo_ean13"])
		if ean != "" && !codigobarras.EsEAN13Valido(ean) {
			fallo(f.Numero, ImportEANInvalido, fmt.Sprintf("%s no es un EAN-13 valido", ean))
			continue
		}
		minimo := 0
		if v := strings.TrimSpace(f.Valores["stock_minimo"]); v != "" {
			if minimo, err = strconv.Atoi(v); err != nil || minimo < 0 {
				fallo(f.Numero, ImportNumeroInvalido, "stock_minimo debe ser un entero no negativo")
				continue
			}
		}
		costo := decimal.Zero
		if v := strings.TrimSpace(f.Valores["costo_unitario"]); v != "" {
			if costo, err = decimal.NewFromString(v); err != nil || costo.IsNegative() {
				fallo(f.Numero, ImportNumeroInvalido, "costo_unitario debe ser un numero no negativo")
				continue
			}
		}
		unidad := strings.TrimSpace(f.Valores["unidad"])

		var existing *model.Articulo
		if ean != "" {
			existing, err = s.articulos.FindByEAN(ctx, ean)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		if existing != nil {
			existing.Nombre = nombre
			existing.StockMinimo = minimo
			existing.CostoUnitario = costo
			if unidad != "" {
				existing.Unidad = unidad
			}
			if existing.StockMaximo != nil && *existing.StockMaximo < minimo {
				existing.StockMaximo = nil
			}
			if err := s.articulos.Update(ctx, existing); err != nil {
				fallo(f.Numero, ImportErrorGuardado, err.Error())
				continue
			}
			invalidarCacheArticulo(ctx, s.rdb, existing.CodigoEAN13)
			resp.Actualizados++
			continue
		}

		if ean == "" {
			if ean, err = s.generarEAN(ctx); err != nil {
				fallo(f.Numero, ImportErrorGuardado, err.Error())
				continue
			}
		}
		if unidad == "" {
			unidad = "pieza"
		}
		a := &model.Articulo{
			CodigoEAN13:   strPtr(ean),
			Nombre:        nombre,
			Unidad:        unidad,
			StockMinimo:   minimo,
			CostoUnitario: costo,
			Activo:        true,
		}
		err := runTx(ctx, s.articulos.DB(), func(tx *gorm.DB) error {
			return s.articulos.CreateTx(tx, a)
		})
		if err != nil {
			fallo(f.Numero, ImportErrorGuardado, err.Error())
			continue
		}
		resp.Creados++
	}
	log.Info().Int("creados", resp.Creados).Int("actualizados", resp.Actualizados).
		Int("errores", len(resp.Errores)).Msg("importacion de articulos")
	return resp, nil
}

func (s *articuloService) Alertas(ctx context.Context) ([]dto.ArticuloResponse, error) {
	list, err := s.articulos.ListAlertas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArticuloResponse, 0, len(list))
	for _, a := range list {
		out = append(out, mapArticulo(a))
	}
	return out, nil
}
