package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashgame/domain"
	"cashgame/domain/services"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SweepReport summarizes one integrity sweep
type SweepReport struct {
	Checked    int
	Unbalanced []int64
	Failed     []int64
}

// IntegritySweep periodically recomputes the settlement of recently closed sessions
// and reports any whose debts and credits no longer agree. It never writes.
type IntegritySweep struct {
	cron       *cron.Cron
	uowFactory UnitOfWorkFactory
	calculator *services.SettlementCalculator
	metrics    settlementRecorder
	schedule   string
	lookback   time.Duration
	now        func() time.Time
}

type settlementRecorder interface {
	RecordSettlement(outcome string)
}

// NewIntegritySweep creates the sweep job. metrics may be nil.
func NewIntegritySweep(
	uowFactory UnitOfWorkFactory,
	calculator *services.SettlementCalculator,
	metrics settlementRecorder,
	schedule string,
	lookback time.Duration,
) *IntegritySweep {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &IntegritySweep{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		uowFactory: uowFactory,
		calculator: calculator,
		metrics:    metrics,
		schedule:   schedule,
		lookback:   lookback,
		now:        time.Now,
	}
}

// Start schedules the sweep and starts the cron runner
func (s *IntegritySweep) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		report, err := s.RunOnce(ctx)
		if err != nil {
			log.WithError(err).Error("[SWEEP] Integrity sweep failed")
			return
		}
		log.WithFields(log.Fields{
			"checked":    report.Checked,
			"unbalanced": len(report.Unbalanced),
			"failed":     len(report.Failed),
		}).Info("[SWEEP] Integrity sweep finished")
	})
	if err != nil {
		return fmt.Errorf("invalid integrity sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"schedule": s.schedule,
		"lookback": s.lookback,
	}).Info("Integrity sweep scheduled")
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish
func (s *IntegritySweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Integrity sweep stopped")
}

// RunOnce checks every session closed within the lookback window
func (s *IntegritySweep) RunOnce(ctx context.Context) (*SweepReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	since := s.now().Add(-s.lookback)
	sessions, err := uow.SessionRepository().ListClosedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed sessions: %w", err)
	}

	settlementService := services.NewSettlementService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.BuyInRepository(),
		s.calculator,
	)

	report := &SweepReport{}
	for _, session := range sessions {
		report.Checked++

		_, err := settlementService.GetSettlement(ctx, session.ID)
		switch {
		case err == nil:
			s.metrics.RecordSettlement(settlementOutcomeOK)
		case errors.Is(err, domain.ErrUnbalancedLedger):
			s.metrics.RecordSettlement(settlementOutcomeUnbalanced)
			report.Unbalanced = append(report.Unbalanced, session.ID)
			log.WithFields(log.Fields{
				"sessionID": session.ID,
				"code":      session.Code,
				"error":     err,
			}).Error("[SWEEP] Closed session no longer settles")
		default:
			report.Failed = append(report.Failed, session.ID)
			log.WithFields(log.Fields{
				"sessionID": session.ID,
				"error":     err,
			}).Warn("[SWEEP] Failed to recompute settlement")
		}
	}

	return report, nil
}
