package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const donationReceiptScope = "fundraising.donation"

var errReceiptConflict = errors.New("receipt_conflict")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Receipts *idempotency.Store
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	receipts *idempotency.Store
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	receipts := p.Receipts
	if receipts == nil {
		receipts = idempotency.NewStore()
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("fundraising.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		receipts: receipts,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, personID string) (domain.Progress, error) {
	id, err := parseID(personID)
	if err != nil {
		return domain.Progress{}, err
	}
	if err := s.requireOwner(ctx, s.db, id); err != nil {
		return domain.Progress{}, err
	}
	progress, err := s.repo.FindProgress(ctx, s.db, id)
	if err != nil {
		return domain.Progress{}, err
	}
	if progress == nil {
		return domain.Progress{VolunteerID: id, Donations: []domain.Donation{}, Prospects: []domain.Prospect{}}, nil
	}
	return *progress, nil
}

// SetGoal replaces the goal. Replacing it once donations exist is allowed but
// logged.
func (s *Service) SetGoal(ctx context.Context, personID string, amount int64) (progress domain.Progress, err error) {
	defer func() { s.metrics.RecordCommand("fundraising.set_goal", metrics.Outcome(err)) }()

	id, err := parseID(personID)
	if err != nil {
		return domain.Progress{}, err
	}
	if amount <= 0 {
		return domain.Progress{}, domain.ErrInvalidGoal
	}

	var previous int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.lockProgress(ctx, tx, id)
		if err != nil {
			return err
		}
		previous = current.Goal
		if current.Raised > 0 && previous != 0 && previous != amount {
			s.log.Warn("give or get goal changed after donations were logged",
				zap.String("volunteer_id", id.String()),
				zap.Int64("previous_goal", previous),
				zap.Int64("goal", amount),
				zap.Int64("raised", current.Raised),
			)
		}
		current.Goal = amount
		current.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.UpdateProgress(ctx, tx, current); err != nil {
			return err
		}
		return s.audit(ctx, tx, "fundraising.goal_set", "volunteer", id.String(), map[string]any{
			"previous_goal": previous,
			"goal":          amount,
		})
	})
	if err != nil {
		return domain.Progress{}, err
	}
	return s.Get(ctx, personID)
}

func (s *Service) AddProspect(ctx context.Context, req domain.AddProspectRequest) (prospect domain.Prospect, err error) {
	defer func() { s.metrics.RecordCommand("fundraising.add_prospect", metrics.Outcome(err)) }()

	id, err := parseID(req.PersonID)
	if err != nil {
		return domain.Prospect{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Prospect{}, domain.ErrInvalidProspectName
	}
	prospectType := domain.ProspectType(strings.TrimSpace(req.Type))
	if prospectType == "" {
		prospectType = domain.ProspectIndividual
	}
	if !prospectType.Valid() {
		return domain.Prospect{}, domain.ErrInvalidProspectType
	}
	if req.Amount <= 0 {
		return domain.Prospect{}, domain.ErrInvalidProspectAmount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockProgress(ctx, tx, id); err != nil {
			return err
		}
		now := s.clock.Now().UTC()
		prospect = domain.Prospect{
			ID:           s.genID.Generate(),
			VolunteerID:  id,
			Name:         name,
			Email:        optionalString(req.Email),
			Phone:        optionalString(req.Phone),
			Organization: optionalString(req.Organization),
			Type:         prospectType,
			Amount:       req.Amount,
			Status:       domain.ProspectIdentified,
			CreatedAt:    now,
			UpdatedAt:    now,
			OutreachLog:  []domain.OutreachEntry{},
		}
		return s.repo.InsertProspect(ctx, tx, &prospect)
	})
	if err != nil {
		return domain.Prospect{}, err
	}
	return prospect, nil
}

func (s *Service) GetProspect(ctx context.Context, prospectID string) (domain.Prospect, error) {
	id, err := parseID(prospectID)
	if err != nil {
		return domain.Prospect{}, err
	}
	prospect, err := s.repo.FindProspect(ctx, s.db, id)
	if err != nil {
		return domain.Prospect{}, err
	}
	if prospect == nil {
		return domain.Prospect{}, domain.ErrProspectNotFound
	}
	return *prospect, nil
}

func (s *Service) RemoveProspect(ctx context.Context, prospectID string) (err error) {
	defer func() { s.metrics.RecordCommand("fundraising.remove_prospect", metrics.Outcome(err)) }()

	id, err := parseID(prospectID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prospect, err := s.repo.FindProspectForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}
		if err := s.repo.DeleteProspect(ctx, tx, id); err != nil {
			return err
		}
		return s.audit(ctx, tx, "fundraising.prospect_removed", "prospect", id.String(), map[string]any{
			"volunteer_id": prospect.VolunteerID.String(),
			"name":         prospect.Name,
		})
	})
}

// UpdateProspectStatus sets any funnel status; the funnel order is not enforced.
func (s *Service) UpdateProspectStatus(ctx context.Context, prospectID, status string) (domain.Prospect, error) {
	target := domain.ProspectStatus(strings.TrimSpace(status))
	if !target.Valid() {
		return domain.Prospect{}, domain.ErrInvalidProspectStatus
	}
	return s.mutateProspect(ctx, "fundraising.update_prospect_status", prospectID, func(tx *gorm.DB, p *domain.Prospect, now time.Time) error {
		p.Status = target
		return nil
	})
}

// LogOutreach appends to the outreach log and moves an identified prospect to
// contacted.
func (s *Service) LogOutreach(ctx context.Context, prospectID string, req domain.OutreachRequest) (domain.Prospect, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return domain.Prospect{}, domain.ErrInvalidOutreachMethod
	}
	var contactedAt *time.Time
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return domain.Prospect{}, err
		}
		contactedAt = &parsed
	}

	return s.mutateProspect(ctx, "fundraising.log_outreach", prospectID, func(tx *gorm.DB, p *domain.Prospect, now time.Time) error {
		at := now
		if contactedAt != nil {
			at = *contactedAt
		}
		entry := domain.OutreachEntry{
			ID:          s.genID.Generate(),
			ProspectID:  p.ID,
			ContactedAt: at,
			Method:      method,
			Notes:       strings.TrimSpace(req.Notes),
			CreatedAt:   now,
		}
		if err := s.repo.InsertOutreach(ctx, tx, &entry); err != nil {
			return err
		}
		p.Status = domain.AfterOutreach(p.Status)
		if p.LastContact == nil || at.After(*p.LastContact) {
			p.LastContact = &at
		}
		return nil
	})
}

func (s *Service) mutateProspect(
	ctx context.Context,
	command, prospectID string,
	mutate func(tx *gorm.DB, p *domain.Prospect, now time.Time) error,
) (prospect domain.Prospect, err error) {
	defer func() { s.metrics.RecordCommand(command, metrics.Outcome(err)) }()

	id, err := parseID(prospectID)
	if err != nil {
		return domain.Prospect{}, err
	}
	var from domain.ProspectStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindProspectForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrProspectNotFound
		}
		from = current.Status
		now := s.clock.Now().UTC()
		if err := mutate(tx, current, now); err != nil {
			return err
		}
		current.UpdatedAt = now
		return s.repo.UpdateProspect(ctx, tx, current)
	})
	if err != nil {
		return domain.Prospect{}, err
	}

	stored, err := s.repo.FindProspect(ctx, s.db, id)
	if err != nil {
		return domain.Prospect{}, err
	}
	if stored == nil {
		return domain.Prospect{}, domain.ErrProspectNotFound
	}
	if stored.Status != from {
		s.metrics.RecordTransition("prospect", string(stored.Status))
	}
	return *stored, nil
}

// LogDonation is the only path that changes the ledger aggregates. A replayed
// idempotency key returns the original entry without counting it again.
func (s *Service) LogDonation(ctx context.Context, req domain.LogDonationRequest) (donation domain.Donation, err error) {
	replayed := false
	defer func() {
		outcome := metrics.Outcome(err)
		if replayed {
			outcome = metrics.OutcomeReplayed
		}
		s.metrics.RecordCommand("fundraising.log_donation", outcome)
	}()

	id, err := parseID(req.PersonID)
	if err != nil {
		return domain.Donation{}, err
	}
	if req.Amount <= 0 {
		return domain.Donation{}, domain.ErrInvalidDonationAmount
	}
	donationType := domain.DonationType(strings.TrimSpace(req.Type))
	if !donationType.Valid() {
		return domain.Donation{}, domain.ErrInvalidDonationType
	}
	var donatedAt *time.Time
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return domain.Donation{}, err
		}
		donatedAt = &parsed
	}
	key, err := idempotency.Normalize(req.IdempotencyKey)
	if err != nil {
		return domain.Donation{}, err
	}
	scope := idempotency.Scope(donationReceiptScope, id.String())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := s.lockProgress(ctx, tx, id)
		if err != nil {
			return err
		}

		if existingID, err := s.receipts.Lookup(ctx, tx, scope, key); err != nil {
			return err
		} else if existingID != 0 {
			stored, err := s.repo.FindDonation(ctx, tx, existingID)
			if err != nil {
				return err
			}
			if stored != nil {
				donation = *stored
				replayed = true
				return nil
			}
		}

		now := s.clock.Now().UTC()
		donation = domain.Donation{
			ID:          s.genID.Generate(),
			VolunteerID: id,
			Amount:      req.Amount,
			Type:        donationType,
			Note:        strings.TrimSpace(req.Note),
			DonatedAt:   now,
		}
		if donatedAt != nil {
			donation.DonatedAt = *donatedAt
		}
		if err := s.repo.InsertDonation(ctx, tx, &donation); err != nil {
			return err
		}
		progress.Apply(donation)
		progress.UpdatedAt = now
		if err := s.repo.UpdateProgress(ctx, tx, progress); err != nil {
			return err
		}
		if _, recorded, err := s.receipts.Record(ctx, tx, scope, key, donation.ID, now); err != nil {
			return err
		} else if !recorded {
			return errReceiptConflict
		}
		return s.audit(ctx, tx, "fundraising.donation_logged", "volunteer", id.String(), map[string]any{
			"donation_id": donation.ID.String(),
			"amount":      donation.Amount,
			"type":        string(donation.Type),
		})
	})
	if errors.Is(err, errReceiptConflict) {
		replayed = true
		return s.replayDonation(ctx, scope, key)
	}
	if err != nil {
		return domain.Donation{}, err
	}

	if !replayed {
		s.metrics.RecordDonation(string(donation.Type), donation.Amount)
		s.log.Info("donation logged",
			zap.String("volunteer_id", id.String()),
			zap.String("donation_id", donation.ID.String()),
			zap.String("type", string(donation.Type)),
			zap.Int64("amount", donation.Amount),
		)
	}
	return donation, nil
}

func (s *Service) replayDonation(ctx context.Context, scope, key string) (domain.Donation, error) {
	id, err := s.receipts.Lookup(ctx, s.db, scope, key)
	if err != nil {
		return domain.Donation{}, err
	}
	stored, err := s.repo.FindDonation(ctx, s.db, id)
	if err != nil {
		return domain.Donation{}, err
	}
	if stored == nil {
		return domain.Donation{}, errors.New("donation receipt without donation")
	}
	return *stored, nil
}

// Reconcile checks the stored aggregates against the donation log.
func (s *Service) Reconcile(ctx context.Context, personID string) (domain.Reconciliation, error) {
	progress, err := s.Get(ctx, personID)
	if err != nil {
		return domain.Reconciliation{}, err
	}
	result := domain.Reconcile(progress, progress.Donations)
	if !result.Balanced {
		s.log.Error("give or get ledger out of balance",
			zap.String("volunteer_id", result.VolunteerID),
			zap.Int64("stored_raised", result.Stored.Raised),
			zap.Int64("computed_raised", result.Computed.Raised),
		)
	}
	return result, nil
}

func (s *Service) requireOwner(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	owner, err := s.repo.FindOwner(ctx, db, id)
	if err != nil {
		return err
	}
	if owner == nil {
		return domain.ErrVolunteerNotFound
	}
	if !owner.CanHoldLedger() {
		return domain.ErrNotBoardMember
	}
	return nil
}

// lockProgress returns the volunteer's ledger row locked for update, creating
// it first when missing.
func (s *Service) lockProgress(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Progress, error) {
	if err := s.requireOwner(ctx, tx, id); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	if err := s.repo.EnsureProgress(ctx, tx, &domain.Progress{VolunteerID: id, CreatedAt: now, UpdatedAt: now}); err != nil {
		return nil, err
	}
	progress, err := s.repo.FindProgressForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, errors.New("give or get ledger missing after create")
	}
	return progress, nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action, targetType, targetID string, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.AuditLog(ctx, tx, action, targetType, targetID, metadata)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseDate(value string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, value); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t.UTC(), nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
