package service

import (
	"context"
	"strings"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("compliance.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) SetStepStatus(ctx context.Context, req domain.SetStepStatusRequest) (step domain.Step, err error) {
	defer func() { s.metrics.RecordCommand("compliance.set_step_status", metrics.Outcome(err)) }()

	personID, err := parseID(req.PersonID)
	if err != nil {
		return domain.Step{}, err
	}
	stepID := domain.StepID(strings.TrimSpace(req.StepID))
	status := domain.StepStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return domain.Step{}, domain.ErrInvalidStepStatus
	}
	documentPath := normalizePath(req.DocumentPath)

	var previous domain.StepStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject, err := s.repo.FindSubjectForUpdate(ctx, tx, personID)
		if err != nil {
			return err
		}
		if subject == nil {
			return domain.ErrPersonNotFound
		}

		role := subject.CatalogueRole()
		def, ok := domain.Definition(role, stepID)
		if !ok {
			return domain.ErrStepNotInCatalogue
		}

		now := s.clock.Now().UTC()
		existing, err := s.repo.FindStep(ctx, tx, personID, stepID)
		if err != nil {
			return err
		}
		if existing == nil {
			// catalogue grew after the row set was created
			created := domain.NewSteps(personID, []domain.StepDefinition{def}, now)
			if err := s.repo.InsertMissing(ctx, tx, created); err != nil {
				return err
			}
			existing = &created[0]
		}
		previous = existing.Status

		if documentPath != nil {
			existing.DocumentPath = documentPath
		}
		if def.RequiresDocument && status != domain.StepStatusPending && existing.DocumentPath == nil {
			return domain.ErrDocumentRequired
		}
		existing.Status = status
		existing.UpdatedAt = now

		if err := s.repo.UpdateStep(ctx, tx, existing); err != nil {
			return err
		}
		step = *existing

		if s.auditSvc != nil {
			metadata := map[string]any{
				"step_id": string(stepID),
				"from":    string(previous),
				"to":      string(status),
			}
			if step.DocumentPath != nil {
				metadata["document_path"] = *step.DocumentPath
			}
			if err := s.auditSvc.AuditLog(ctx, tx, "compliance.step_updated", "volunteer", personID.String(), metadata); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Step{}, err
	}

	s.metrics.RecordTransition("compliance_step", string(status))
	s.log.Info("compliance step updated",
		zap.String("person_id", personID.String()),
		zap.String("step_id", string(stepID)),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)
	return step, nil
}

func (s *Service) Checklist(ctx context.Context, personID string) (domain.Checklist, error) {
	subject, steps, err := s.snapshot(ctx, personID)
	if err != nil {
		return domain.Checklist{}, err
	}
	role := subject.CatalogueRole()
	return domain.Checklist{
		PersonID: subject.ID.String(),
		Role:     string(role),
		Required: domain.RequiredSteps(role),
		Steps:    steps,
	}, nil
}

// Eligibility evaluates capability against a snapshot read for this call.
func (s *Service) Eligibility(ctx context.Context, personID, capability string) (domain.Eligibility, error) {
	c, err := domain.ParseCapability(capability)
	if err != nil {
		return domain.Eligibility{}, err
	}
	subject, steps, err := s.snapshot(ctx, personID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	return domain.Evaluate(c, subject.Role, steps), nil
}

func (s *Service) snapshot(ctx context.Context, personID string) (*domain.Subject, []domain.Step, error) {
	id, err := parseID(personID)
	if err != nil {
		return nil, nil, err
	}
	subject, err := s.repo.FindSubject(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if subject == nil {
		return nil, nil, domain.ErrPersonNotFound
	}
	steps, err := s.repo.ListSteps(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return subject, steps, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidPersonID
	}
	return id, nil
}

func normalizePath(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
