// Package memstore implementa los puertos de repositorio en memoria para tests.
// TxRunner serializa las transacciones y restaura una copia del estado si fn falla,
// reproduciendo el Commit/Rollback del adaptador PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var (
	_ catalog.TxRunner = (*Store)(nil)
	_ ledger.TxRunner  = (*Store)(nil)
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state

	failures map[string]*failure
}

type failure struct {
	remaining int // llamadas exitosas antes de fallar
	err       error
}

type state struct {
	seq         int
	materials   map[string]entity.Material
	adjustments []entity.StockAdjustment
	projects    map[string]entity.Project
	projectSeq  map[string]int
	lines       []entity.ProjectMaterial
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		data: &state{
			materials:  map[string]entity.Material{},
			projects:   map[string]entity.Project{},
			projectSeq: map[string]int{},
		},
		failures: map[string]*failure{},
	}
}

// FailAfter hace que la operación op ("materials.UpdateStock", "adjustments.Create", ...)
// falle con err después de `calls` llamadas exitosas. Sirve para probar rollbacks.
func (s *Store) FailAfter(op string, calls int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{remaining: calls, err: err}
}

// check debe llamarse con s.mu tomado.
func (s *Store) check(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		return nil
	}
	delete(s.failures, op)
	return fmt.Errorf("memstore %s: %w", op, f.err)
}

// Materials repositorio de materiales.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{s: s} }

// Adjustments repositorio del log de ajustes.
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{s: s} }

// Projects repositorio de proyectos.
func (s *Store) Projects() *ProjectRepo { return &ProjectRepo{s: s} }

// Lines repositorio de líneas de material.
func (s *Store) Lines() *LineRepo { return &LineRepo{s: s} }

// Run implementa catalog.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	return s.inTx(func() error {
		return fn(s.Materials(), s.Adjustments())
	})
}

// RunLedger implementa ledger.TxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	projectRepo repository.ProjectRepository,
	lineRepo repository.ProjectMaterialRepository,
) error) error {
	return s.inTx(func() error {
		return fn(s.Materials(), s.Adjustments(), s.Projects(), s.Lines())
	})
}

func (s *Store) inTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// AdjustmentsFor devuelve los ajustes de un material en orden de inserción (ayuda para asserts).
func (s *Store) AdjustmentsFor(materialID string) []entity.StockAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockAdjustment
	for _, a := range s.data.adjustments {
		if a.MaterialID == materialID {
			out = append(out, a)
		}
	}
	return out
}

// LineCount total de líneas guardadas (ayuda para asserts).
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.lines)
}

func (st *state) clone() *state {
	c := &state{
		seq:         st.seq,
		materials:   make(map[string]entity.Material, len(st.materials)),
		adjustments: append([]entity.StockAdjustment(nil), st.adjustments...),
		projects:    make(map[string]entity.Project, len(st.projects)),
		projectSeq:  make(map[string]int, len(st.projectSeq)),
		lines:       append([]entity.ProjectMaterial(nil), st.lines...),
	}
	for k, v := range st.materials {
		c.materials[k] = cloneMaterial(v)
	}
	for k, v := range st.projects {
		c.projects[k] = cloneProject(v)
	}
	for k, v := range st.projectSeq {
		c.projectSeq[k] = v
	}
	return c
}

func cloneMaterial(m entity.Material) entity.Material {
	if m.Specifications != nil {
		specs := make(entity.Specifications, len(m.Specifications))
		for k, v := range m.Specifications {
			specs[k] = v
		}
		m.Specifications = specs
	}
	m.Tags = append(entity.Tags(nil), m.Tags...)
	return m
}

func cloneProject(p entity.Project) entity.Project {
	p.Instructions = append([]string(nil), p.Instructions...)
	p.ImageURLs = append([]string(nil), p.ImageURLs...)
	p.Tags = append(entity.Tags(nil), p.Tags...)
	if p.ActualCost != nil {
		c := *p.ActualCost
		p.ActualCost = &c
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		p.CompletedAt = &t
	}
	p.Materials = nil
	return p
}
