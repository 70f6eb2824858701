package router

import (
	"time"

	"inventario3g/internal/config"
	"inventario3g/internal/handler"
	"inventario3g/internal/infra"
	"inventario3g/internal/middleware"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/service"
	"inventario3g/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is the shared infrastructure built by the composition root. The worker
// pool in cmd/server consumes the same Storage and Dispatcher.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Storage    *infra.Storage
	Folios     *infra.FolioGenerator
	Dispatcher *worker.Dispatcher
}

var (
	todos       = []string{model.RolAdministrador, model.RolAlmacen, model.RolCompras, model.RolEncargado}
	almacen     = []string{model.RolAdministrador, model.RolAlmacen}
	compras     = []string{model.RolAdministrador, model.RolCompras}
	operacion   = []string{model.RolAdministrador, model.RolAlmacen, model.RolEncargado}
	recepciones = []string{model.RolAdministrador, model.RolCompras, model.RolAlmacen}
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID(d.Folios.ID))
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	categoriaRepo := repository.NewCategoriaRepository(d.DB)
	ubicacionRepo := repository.NewUbicacionRepository(d.DB)
	proveedorRepo := repository.NewProveedorRepository(d.DB)
	articuloRepo := repository.NewArticuloRepository(d.DB)
	movimientoRepo := repository.NewMovimientoRepository(d.DB)
	equipoRepo := repository.NewEquipoRepository(d.DB)
	camionetaRepo := repository.NewCamionetaRepository(d.DB)
	solicitudRepo := repository.NewSolicitudRepository(d.DB)
	ordenRepo := repository.NewOrdenCompraRepository(d.DB)
	herramientaRepo := repository.NewHerramientaRepository(d.DB)
	campanaRepo := repository.NewCampanaRepository(d.DB)
	trabajoRepo := repository.NewTrabajoImagenRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	ubicacionSvc := service.NewUbicacionService(ubicacionRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	articuloSvc := service.NewArticuloService(articuloRepo, proveedorRepo, movimientoRepo, d.Folios, d.Redis)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, articuloRepo, solicitudRepo, d.Folios, d.Redis)
	equipoSvc := service.NewEquipoService(equipoRepo, usuarioRepo)
	camionetaSvc := service.NewCamionetaService(camionetaRepo, herramientaRepo)
	solicitudSvc := service.NewSolicitudService(solicitudRepo, articuloRepo)
	ordenSvc := service.NewOrdenCompraService(service.OrdenCompraDeps{
		Ordenes:     ordenRepo,
		Solicitudes: solicitudRepo,
		Articulos:   articuloRepo,
		Proveedores: proveedorRepo,
		Movimientos: movimientoRepo,
		Storage:     d.Storage,
		Emails:      d.Dispatcher,
		Folios:      d.Folios,
		Redis:       d.Redis,
		Empresa:     cfg.EmpresaNombre,
	})
	herramientaSvc := service.NewHerramientaService(herramientaRepo, usuarioRepo, camionetaRepo)
	campanaSvc := service.NewCampanaService(campanaRepo)
	imagenSvc := service.NewImagenService(articuloRepo, trabajoRepo, d.Storage, d.Dispatcher)
	dashboardSvc := service.NewDashboardService(articuloRepo, solicitudRepo, ordenRepo, herramientaRepo)

	var guard infra.ScanGuard = infra.NewMemoryScanGuard()
	if d.Redis != nil {
		guard = infra.NewRedisScanGuard(d.Redis)
	}
	cooldown := time.Duration(cfg.ScanCooldownMS) * time.Millisecond
	escaneoSvc := service.NewEscaneoService(articuloSvc, herramientaSvc, guard, cooldown)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	ubicacionesH := handler.NewUbicacionesHandler(ubicacionSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	articulosH := handler.NewArticulosHandler(articuloSvc)
	imagenesH := handler.NewImagenesHandler(imagenSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	equiposH := handler.NewEquiposHandler(equipoSvc)
	camionetasH := handler.NewCamionetasHandler(camionetaSvc)
	solicitudesH := handler.NewSolicitudesHandler(solicitudSvc)
	ordenesH := handler.NewOrdenesHandler(ordenSvc)
	herramientasH := handler.NewHerramientasHandler(herramientaSvc)
	campanasH := handler.NewCampanasHandler(campanaSvc)
	escaneoH := handler.NewEscaneoHandler(escaneoSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var dbPing, redisPing handler.Pinger
	if d.DB != nil {
		dbPing = handler.DBPinger(d.DB)
	}
	if d.Redis != nil {
		redisPing = handler.RedisPinger(d.Redis)
	}
	r.GET("/health", handler.Health(dbPing, redisPing))

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		api.GET("/auth/me", authH.Me)

		usuarios := api.Group("/usuarios", middleware.RequireRole(model.RolAdministrador))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.GET("/:id", usuariosH.ObtenerPorID)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		// Catalogues: everyone reads, warehouse writes
		api.GET("/categorias", middleware.RequireRole(todos...), categoriasH.Listar)
		categorias := api.Group("/categorias", middleware.RequireRole(almacen...))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		api.GET("/ubicaciones", middleware.RequireRole(todos...), ubicacionesH.Listar)
		ubicaciones := api.Group("/ubicaciones", middleware.RequireRole(almacen...))
		{
			ubicaciones.POST("", ubicacionesH.Crear)
			ubicaciones.PUT("/:id", ubicacionesH.Actualizar)
			ubicaciones.DELETE("/:id", ubicacionesH.Desactivar)
		}

		api.GET("/proveedores", middleware.RequireRole(todos...), proveedoresH.Listar)
		api.GET("/proveedores/:id", middleware.RequireRole(todos...), proveedoresH.ObtenerPorID)
		proveedores := api.Group("/proveedores", middleware.RequireRole(compras...))
		{
			proveedores.POST("", proveedoresH.Crear)
			proveedores.PUT("/:id", proveedoresH.Actualizar)
			proveedores.DELETE("/:id", proveedoresH.Desactivar)
		}

		// Articulos: static paths before /:id
		leer := middleware.RequireRole(todos...)
		art := api.Group("/articulos")
		{
			art.GET("", leer, articulosH.Listar)
			art.GET("/alertas", leer, articulosH.Alertas)
			art.GET("/exportar", middleware.RequireRole(almacen...), articulosH.Exportar)
			art.POST("/importar", middleware.RequireRole(almacen...), articulosH.Importar)
			art.GET("/codigo/:codigo", leer, articulosH.ObtenerPorCodigo)
			art.GET("/:id", leer, articulosH.ObtenerPorID)
			art.GET("/:id/codigo-barras", leer, articulosH.CodigoBarras)
			art.GET("/:id/imagen", leer, imagenesH.Imagen)
			art.GET("/:id/miniatura", leer, imagenesH.Miniatura)
			art.GET("/:id/proveedores", leer, articulosH.ListarProveedores)
			art.GET("/:id/historial-costos", leer, articulosH.HistorialCostos)

			escritura := art.Group("", middleware.RequireRole(almacen...))
			escritura.POST("", articulosH.Crear)
			escritura.PUT("/:id", articulosH.Actualizar)
			escritura.DELETE("/:id", articulosH.Desactivar)
			escritura.PATCH("/:id/reactivar", articulosH.Reactivar)
			escritura.POST("/:id/imagen", imagenesH.Subir)

			provs := art.Group("", middleware.RequireRole(recepciones...))
			provs.PUT("/:id/proveedores", articulosH.AsignarProveedor)
			provs.DELETE("/:id/proveedores/:proveedor_id", articulosH.QuitarProveedor)
		}

		img := api.Group("/procesamiento-imagenes")
		{
			img.POST("/masivo", middleware.RequireRole(almacen...), imagenesH.Masivo)
			img.GET("/estado", leer, imagenesH.Estado)
		}

		api.POST("/movimientos", middleware.RequireRole(operacion...), movimientosH.Registrar)
		api.GET("/movimientos", leer, movimientosH.Listar)

		// Equipos y camionetas: administrador writes
		api.GET("/equipos", leer, equiposH.Listar)
		api.GET("/equipos/:id", leer, equiposH.ObtenerPorID)
		equipos := api.Group("/equipos", middleware.RequireRole(model.RolAdministrador))
		{
			equipos.POST("", equiposH.Crear)
			equipos.PUT("/:id", equiposH.Actualizar)
			equipos.PUT("/:id/miembros", equiposH.AsignarMiembros)
			equipos.DELETE("/:id", equiposH.Desactivar)
		}

		api.GET("/camionetas", leer, camionetasH.Listar)
		api.GET("/camionetas/:id", leer, camionetasH.ObtenerPorID)
		api.GET("/camionetas/:id/herramientas", leer, camionetasH.Herramientas)
		camionetas := api.Group("/camionetas", middleware.RequireRole(model.RolAdministrador))
		{
			camionetas.POST("", camionetasH.Crear)
			camionetas.PUT("/:id", camionetasH.Actualizar)
			camionetas.DELETE("/:id", camionetasH.Desactivar)
		}

		// Compras
		sol := api.Group("/solicitudes-compra")
		{
			sol.POST("", leer, solicitudesH.Crear)
			sol.GET("", leer, solicitudesH.Listar)
			sol.POST("/:id/cancelar", middleware.RequireRole(compras...), solicitudesH.Cancelar)
		}

		oc := api.Group("/ordenes-compra")
		{
			oc.GET("", leer, ordenesH.Listar)
			oc.GET("/:id", leer, ordenesH.ObtenerPorID)
			oc.GET("/:id/pdf", leer, ordenesH.PDF)
			oc.POST("/:id/recibir", middleware.RequireRole(recepciones...), ordenesH.Recibir)

			gestion := oc.Group("", middleware.RequireRole(compras...))
			gestion.POST("", ordenesH.Crear)
			gestion.PUT("/:id", ordenesH.Actualizar)
			gestion.POST("/:id/enviar", ordenesH.Enviar)
			gestion.POST("/:id/anular", ordenesH.Anular)
		}

		// Herramientas de renta
		her := api.Group("/herramientas-renta")
		{
			her.GET("/tipos", leer, herramientasH.ListarTipos)
			her.POST("/tipos", middleware.RequireRole(almacen...), herramientasH.CrearTipo)
			her.PUT("/tipos/:id", middleware.RequireRole(almacen...), herramientasH.ActualizarTipo)
			her.POST("/tipos/:id/unidades", middleware.RequireRole(almacen...), herramientasH.CrearUnidades)

			her.GET("", leer, herramientasH.ListarUnidades)
			her.GET("/codigo/:codigo", leer, herramientasH.ObtenerPorCodigo)
			her.GET("/:id/historial", leer, herramientasH.Historial)
			her.GET("/:id/codigo-barras", leer, herramientasH.CodigoBarras)

			mov := her.Group("", middleware.RequireRole(operacion...))
			mov.POST("/:id/asignar", herramientasH.Asignar)
			mov.POST("/:id/devolver", herramientasH.Devolver)
			mov.PATCH("/:id/estado", herramientasH.CambiarEstado)
		}

		// Campaña control: encargados capture the board
		cc := api.Group("/campana-control")
		{
			cc.GET("", leer, campanasH.Listar)
			cc.GET("/:id/tablero", leer, campanasH.Tablero)
			cc.GET("/:id/exportar", leer, campanasH.Exportar)

			captura := cc.Group("", middleware.RequireRole(model.RolAdministrador, model.RolEncargado))
			captura.POST("", campanasH.Crear)
			captura.PUT("/:id/celdas", campanasH.ActualizarCeldas)
			captura.DELETE("/:id/celdas/:celda_id", campanasH.EliminarCelda)
		}

		api.POST("/escaneo", leer, escaneoH.Escanear)
		api.GET("/dashboard/resumen", leer, dashboardH.Resumen)
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
