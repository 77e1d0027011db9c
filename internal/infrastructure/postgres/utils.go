package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/taller-api/internal/domain"
)

// Códigos SQLSTATE traducidos a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02"
	codeNumericOutOfRange   = "22003"
)

// translateError convierte violaciones de restricciones en domain.ErrInvalidInput
// y envuelve el resto con el contexto de la operación.
func translateError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeCheckViolation, codeForeignKeyViolation, codeInvalidTextRep, codeNumericOutOfRange:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID los ids son UUID; cualquier otro texto no puede existir en la base.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs descarta los ids que no son UUID.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}

// likePattern escapa los comodines de ILIKE y envuelve el texto con %.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// conditions acumula cláusulas WHERE con placeholders numerados.
// Cada cláusula usa %[1]d para referirse a su argumento.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page agrega LIMIT/OFFSET; limit <= 0 no limita.
func (c *conditions) page(limit, offset int) string {
	var sb strings.Builder
	args := len(c.args)
	if limit > 0 {
		c.args = append(c.args, limit)
		args++
		fmt.Fprintf(&sb, " LIMIT $%d", args)
	}
	if offset > 0 {
		c.args = append(c.args, offset)
		args++
		fmt.Fprintf(&sb, " OFFSET $%d", args)
	}
	return sb.String()
}
