package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrNoFieldsToUpdate   = errors.New("no se indicó ningún campo para actualizar")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrMaterialNotFound   = errors.New("material no encontrado")
	ErrNoMaterials        = errors.New("el proyecto no tiene materiales")
	ErrCatalogUnavailable = errors.New("catálogo de materiales no disponible")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// MaterialError asocia un error de dominio al material que lo provocó.
// errors.Is(err, ErrInsufficientStock) sigue funcionando sobre el error envuelto.
type MaterialError struct {
	MaterialID string
	Err        error
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.MaterialID)
}

func (e *MaterialError) Unwrap() error { return e.Err }

// NewMaterialError construye un MaterialError.
func NewMaterialError(materialID string, err error) error {
	return &MaterialError{MaterialID: materialID, Err: err}
}

// ValidationError detalla qué campo no superó la validación. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
