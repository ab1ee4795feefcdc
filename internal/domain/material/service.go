package material

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
	"taskhive/pkg/logger"
)

// Repository is the storage contract for materials.
type Repository interface {
	domain.Repository[*Material]
}

// StrippedUsage is one line item removed from a host during a material
// delete.
type StrippedUsage struct {
	HostID id.ID
	Usage  Usage
}

// LineItemStore is implemented by the task and activity repositories:
// the two places material line items live.
type LineItemStore interface {
	// HostType names the store ("task" or "activity") for journaling.
	HostType() string

	// StripMaterial removes every line item for the material from all live
	// hosts, recomputing each host's total, and returns what was removed.
	StripMaterial(ctx context.Context, materialID id.ID) ([]StrippedUsage, error)

	// ReinsertUsage re-adds a line item to a host. Returns false without
	// error when the host is no longer live.
	ReinsertUsage(ctx context.Context, hostID id.ID, u Usage) (bool, error)
}

// JournalEntry durably records a line item stripped at delete time so a
// later restore can re-insert it.
type JournalEntry struct {
	ID           id.ID           `db:"id"`
	MaterialID   id.ID           `db:"material_id"`
	OrgID        id.ID           `db:"org_id"`
	HostType     string          `db:"host_type"`
	HostID       id.ID           `db:"host_id"`
	Quantity     decimal.Decimal `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	RemovedAt    time.Time       `db:"removed_at"`
	ReinsertedAt *time.Time      `db:"reinserted_at"`
}

// Journal persists stripped line items across the delete/restore cycle.
type Journal interface {
	Record(ctx context.Context, e *JournalEntry) error

	// OpenEntries returns entries not yet re-inserted, oldest first.
	OpenEntries(ctx context.Context, materialID id.ID) ([]*JournalEntry, error)

	MarkReinserted(ctx context.Context, entryID id.ID) error
}

// Service implements material operations, including the deletion special
// case: a material in active use is stripped from every referencing line
// item (the removals journaled) rather than blocking the delete.
type Service struct {
	repo      Repository
	txc       domain.TxChecker
	hosts     []LineItemStore
	journal   Journal
	deptProbe refs.Prober
	recorder  domain.TransitionRecorder
}

// NewService creates a material service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	hosts []LineItemStore,
	journal Journal,
	deptProbe refs.Prober,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:      repo,
		txc:       txc,
		hosts:     hosts,
		journal:   journal,
		deptProbe: deptProbe,
		recorder:  recorder,
	}
}

// Create validates and inserts a material.
func (s *Service) Create(ctx context.Context, m *Material) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, m.DeptID, m.OrgID); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, m.ID, m.OrgID, m)
}

// Update validates and persists changes to a material.
func (s *Service) Update(ctx context.Context, m *Material) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, m.ID, m.OrgID, m)
}

// GetByID returns a live material.
func (s *Service) GetByID(ctx context.Context, materialID id.ID) (*Material, error) {
	return s.repo.GetByID(ctx, materialID)
}

// List returns materials matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Material], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the material after stripping its line items
// from every live task and activity, journaling each removal so a restore
// can re-insert them.
func (s *Service) SoftDeleteCascade(ctx context.Context, materialID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "material cascade delete"); err != nil {
		return err
	}

	m, err := s.repo.GetByIDAny(ctx, materialID)
	if err != nil {
		return err
	}
	if m.Deleted() {
		return apperror.NewAlreadyDeleted(EntityType, materialID)
	}

	by := appctx.ActingUser(ctx)
	now := time.Now().UTC()

	for _, host := range s.hosts {
		stripped, err := host.StripMaterial(ctx, materialID)
		if err != nil {
			return err
		}
		for _, su := range stripped {
			entry := &JournalEntry{
				ID:         id.New(),
				MaterialID: materialID,
				OrgID:      m.OrgID,
				HostType:   host.HostType(),
				HostID:     su.HostID,
				Quantity:   su.Usage.Quantity,
				UnitPrice:  su.Usage.UnitPrice,
				RemovedAt:  now,
			}
			if err := s.journal.Record(ctx, entry); err != nil {
				return err
			}
		}
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, materialID, m.OrgID, m); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, materialID, by)
}

// RestoreCascade restores the material and attempts to re-insert the line
// items journaled at delete time. Hosts tombstoned in the meantime are
// skipped; their journal entries stay open.
func (s *Service) RestoreCascade(ctx context.Context, materialID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "material cascade restore"); err != nil {
		return err
	}

	m, err := s.repo.GetByIDAny(ctx, materialID)
	if err != nil {
		return err
	}

	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, m.DeptID, m.OrgID); err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	if err := s.repo.Restore(ctx, materialID, by); err != nil {
		return err
	}

	stores := make(map[string]LineItemStore, len(s.hosts))
	for _, h := range s.hosts {
		stores[h.HostType()] = h
	}

	entries, err := s.journal.OpenEntries(ctx, materialID)
	if err != nil {
		return err
	}

	for _, e := range entries {
		host, ok := stores[e.HostType]
		if !ok {
			logger.Warn(ctx, "no line-item store for journaled host type", "hostType", e.HostType)
			continue
		}

		inserted, err := host.ReinsertUsage(ctx, e.HostID, Usage{
			MaterialID: materialID,
			Quantity:   e.Quantity,
			UnitPrice:  e.UnitPrice,
		})
		if err != nil {
			return err
		}
		if inserted {
			if err := s.journal.MarkReinserted(ctx, e.ID); err != nil {
				return err
			}
		}
	}

	return s.recorder.RecordRestored(ctx, EntityType, materialID, m.OrgID, m)
}
