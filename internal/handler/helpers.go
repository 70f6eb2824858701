package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"inventario3g/internal/apierror"
	"inventario3g/internal/dto"
	"inventario3g/internal/middleware"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report the json/form name of the field instead of the Go name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// Respuesta is the success envelope.
type Respuesta struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespuestaLista is the success envelope of paginated lists.
type RespuestaLista struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Respuesta{Success: true, Data: data})
}

func okMsg(c *gin.Context, status int, data interface{}, msg string) {
	c.JSON(status, Respuesta{Success: true, Data: data, Message: msg})
}

func lista[T any](c *gin.Context, resp *dto.ListResponse[T]) {
	c.JSON(http.StatusOK, RespuestaLista{
		Success:    true,
		Data:       resp.Data,
		Total:      resp.Total,
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalPages: resp.TotalPages,
	})
}

// statusDe maps domain errors to an HTTP status; 0 means unknown.
func statusDe(err error) int {
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidacion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrDuplicado),
		errors.Is(err, service.ErrStockInsuficiente),
		errors.Is(err, service.ErrTransicionInvalida),
		errors.Is(err, service.ErrEscaneoDuplicado),
		errors.Is(err, service.ErrConflicto):
		return http.StatusConflict
	case errors.Is(err, service.ErrCredenciales):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNoDisponible):
		return http.StatusServiceUnavailable
	}
	return 0
}

// responderError writes the error envelope. Unknown errors are logged and
// answered with fallback so internals never reach the client.
func responderError(c *gin.Context, err error, fallback string) {
	if status := statusDe(err); status != 0 {
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	log.Error().
		Err(err).
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, apierror.New(fallback))
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery binds query parameters into filter and validates them.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, filter)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// parseID reads a UUID path parameter, answering 400 when malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// usuarioActual is the id of the authenticated user; uuid.Nil outside JWTAuth.
func usuarioActual(c *gin.Context) uuid.UUID {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.ID()
	}
	return uuid.Nil
}

// adjunto streams data as a downloadable file.
func adjunto(c *gin.Context, contentType, nombre string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, contentType, data)
}

const (
	mimePNG  = "image/png"
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// leerArchivo reads the multipart file field campo, up to limite+1 bytes so the
// service can reject oversized uploads.
func leerArchivo(c *gin.Context, campo string, limite int64) ([]byte, bool) {
	fh, err := c.FormFile(campo)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo '"+campo+"'"))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limite+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return nil, false
	}
	return data, true
}
