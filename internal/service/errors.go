package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain errors. Handlers map each one to an HTTP status; services wrap them
// with context via fmt.Errorf("%w: ...").
var (
	ErrNoEncontrado       = errors.New("recurso no encontrado")
	ErrDuplicado          = errors.New("registro duplicado")
	ErrStockInsuficiente  = repository.ErrStockInsuficiente
	ErrTransicionInvalida = errors.New("transicion de estado invalida")
	ErrEscaneoDuplicado   = errors.New("codigo escaneado recientemente")
	ErrValidacion         = errors.New("datos invalidos")
	ErrConflicto          = errors.New("operacion no permitida")
	ErrCredenciales       = errors.New("credenciales invalidas")
	ErrNoDisponible       = errors.New("servicio no disponible")
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// traducir maps GORM errors to domain errors for the given entity.
func traducir(err error, entidad string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNoEncontrado, entidad)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", ErrDuplicado, entidad)
	}
	return err
}

func invalido(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidacion, fmt.Sprintf(format, args...))
}

// parseUUIDOpt parses an optional id; empty strings become nil.
func parseUUIDOpt(campo string, s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, invalido("%s no es un UUID", campo)
	}
	return &id, nil
}

func parseUUIDs(campo string, in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalido("%s contiene un UUID invalido", campo)
		}
		out = append(out, id)
	}
	return out, nil
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func strPtr(s string) *string { return &s }

// limpio trims s and returns nil when nothing is left.
func limpio(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
