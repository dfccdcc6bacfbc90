package antifraud

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

const defaultProbeTimeout = 2 * time.Second

// RiskScorer orchestrates the blacklist veto and the probe fan-out into a
// single RiskAssessment.
type RiskScorer struct {
	blacklist    *BlacklistService
	probes       []Probe
	probeTimeout time.Duration
}

// NewRiskScorer creates a scorer with the six built-in probes
func NewRiskScorer(blacklist *BlacklistService, ledger UsageLedgerRepository) *RiskScorer {
	return &RiskScorer{
		blacklist:    blacklist,
		probes:       defaultProbes(ledger),
		probeTimeout: defaultProbeTimeout,
	}
}

// WithProbes replaces the probe set, e.g. to swap the VPN heuristic for a
// real IP-intelligence provider.
func (s *RiskScorer) WithProbes(probes []Probe) *RiskScorer {
	s.probes = probes
	return s
}

// WithProbeTimeout bounds each probe's query time
func (s *RiskScorer) WithProbeTimeout(timeout time.Duration) *RiskScorer {
	if timeout > 0 {
		s.probeTimeout = timeout
	}
	return s
}

// Assess scores one registration or coupon-redemption attempt. The blacklist
// veto runs first and short-circuits everything else; otherwise all probes
// run concurrently against the same historical snapshot and a failed probe
// degrades to zero instead of failing the assessment.
func (s *RiskScorer) Assess(ctx context.Context, req *AssessmentRequest) (*RiskAssessment, error) {
	check, err := s.blacklist.CheckRegistration(ctx, req.Email, req.IPAddress, req.Fingerprint)
	if err != nil {
		// Fail closed: an unreachable blacklist store must not let a possibly
		// denylisted identifier through.
		logger.Error("blacklist veto check failed, blocking", zap.Error(err), zap.String("ip", req.IPAddress))
		return s.finish(&RiskAssessment{
			RiskScore: 100,
			Factors: []RiskFactor{{
				Factor:      FactorBlacklistUnavailable,
				Score:       100,
				Description: "Bloqueado: verificação de blacklist indisponível",
			}},
			Recommendation:       RecommendationBlock,
			RequiresVerification: false,
		}), nil
	}

	if check.IsBlocked {
		return s.finish(&RiskAssessment{
			RiskScore: 100,
			Factors: []RiskFactor{{
				Factor:      FactorBlacklisted,
				Score:       100,
				Description: fmt.Sprintf("Bloqueado: %s", check.Reason),
			}},
			Recommendation:       RecommendationBlock,
			RequiresVerification: false,
		}), nil
	}

	factors := s.runProbes(ctx, req)

	total := 0
	for _, factor := range factors {
		total += factor.Score
	}
	if total > 100 {
		total = 100
	}

	assessment := &RiskAssessment{
		RiskScore: total,
		Factors:   factors,
	}

	switch {
	case total >= blockThreshold:
		assessment.Recommendation = RecommendationBlock
	case total >= verifyThreshold:
		assessment.Recommendation = RecommendationVerify
		assessment.RequiresVerification = true
	default:
		assessment.Recommendation = RecommendationApprove
	}

	return s.finish(assessment), nil
}

// runProbes fans the probes out concurrently and collects the non-zero
// factors in probe order. A probe error or timeout contributes nothing.
func (s *RiskScorer) runProbes(ctx context.Context, req *AssessmentRequest) []RiskFactor {
	results := make([]*RiskFactor, len(s.probes))

	var wg sync.WaitGroup
	for i, probe := range s.probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
			defer cancel()

			factor, err := probe.Evaluate(probeCtx, req)
			if err != nil {
				probeFailuresTotal.WithLabelValues(probe.Name()).Inc()
				logger.Warn("risk probe degraded to zero",
					zap.String("probe", probe.Name()),
					zap.Error(err),
				)
				return
			}
			results[i] = factor
		}(i, probe)
	}
	wg.Wait()

	factors := make([]RiskFactor, 0, len(results))
	for _, factor := range results {
		if factor != nil && factor.Score > 0 {
			factors = append(factors, *factor)
		}
	}

	return factors
}

func (s *RiskScorer) finish(assessment *RiskAssessment) *RiskAssessment {
	assessmentsTotal.WithLabelValues(string(assessment.Recommendation)).Inc()
	return assessment
}
