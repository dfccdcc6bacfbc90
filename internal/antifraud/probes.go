package antifraud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Probe scoring windows and weights
const (
	ipReuseWindow     = 24 * time.Hour
	ipReuseWeight     = 20
	ipReuseCap        = 60
	fpReuseWindow     = 7 * 24 * time.Hour
	fpReuseWeight     = 30
	fpReuseCap        = 90
	disposableScore   = 40
	vpnProxyScore     = 25
	vpnProxyUserLimit = 5
	velocityWindow    = time.Hour
	velocityLimit     = 3
	velocityScore     = 15
	couponAbuseScore  = 30
)

// disposableDomains is the fixed denylist of throwaway email providers
var disposableDomains = map[string]struct{}{
	"temp-mail.org":     {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"throwaway.email":   {},
	"tempmail.com":      {},
	"mailinator.com":    {},
	"yopmail.com":       {},
	"maildrop.cc":       {},
	"trashmail.com":     {},
	"getnada.com":       {},
	"temp-mail.io":      {},
	"mohmal.com":        {},
}

// ipReuseProbe scores repeated registrations from the same IP in 24 hours
type ipReuseProbe struct {
	ledger UsageLedgerRepository
}

func (p *ipReuseProbe) Name() string { return FactorIPReuse }

func (p *ipReuseProbe) Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	count, err := p.ledger.CountByIP(ctx, req.IPAddress, time.Now().Add(-ipReuseWindow))
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	score := count * ipReuseWeight
	if score > ipReuseCap {
		score = ipReuseCap
	}

	return &RiskFactor{
		Factor:      FactorIPReuse,
		Score:       score,
		Description: fmt.Sprintf("IP usado %d vezes nas últimas 24h", count),
	}, nil
}

// fingerprintReuseProbe scores repeated registrations from the same device in
// seven days. It only applies when the request carries a fingerprint.
type fingerprintReuseProbe struct {
	ledger UsageLedgerRepository
}

func (p *fingerprintReuseProbe) Name() string { return FactorFingerprintReuse }

func (p *fingerprintReuseProbe) Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	if req.Fingerprint == "" {
		return nil, nil
	}

	count, err := p.ledger.CountByFingerprint(ctx, req.Fingerprint, time.Now().Add(-fpReuseWindow))
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	score := count * fpReuseWeight
	if score > fpReuseCap {
		score = fpReuseCap
	}

	return &RiskFactor{
		Factor:      FactorFingerprintReuse,
		Score:       score,
		Description: fmt.Sprintf("Dispositivo usado %d vezes nos últimos 7 dias", count),
	}, nil
}

// disposableEmailProbe flags throwaway email providers
type disposableEmailProbe struct{}

func (p *disposableEmailProbe) Name() string { return FactorDisposableEmail }

func (p *disposableEmailProbe) Evaluate(_ context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	domain := EmailDomain(req.Email)
	if _, ok := disposableDomains[domain]; !ok {
		return nil, nil
	}

	return &RiskFactor{
		Factor:      FactorDisposableEmail,
		Score:       disposableScore,
		Description: fmt.Sprintf("Email temporário detectado: %s", domain),
	}, nil
}

// vpnProxyProbe is a coarse heuristic for shared exit points: many distinct
// users behind one public IP inside 24 hours. A real IP-intelligence provider
// can replace it without touching the scorer.
type vpnProxyProbe struct {
	ledger UsageLedgerRepository
}

func (p *vpnProxyProbe) Name() string { return FactorVPNProxy }

func (p *vpnProxyProbe) Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	if isPrivateIP(req.IPAddress) {
		return nil, nil
	}

	users, err := p.ledger.CountDistinctUsersByIP(ctx, req.IPAddress, time.Now().Add(-ipReuseWindow))
	if err != nil {
		return nil, err
	}
	if users <= vpnProxyUserLimit {
		return nil, nil
	}

	return &RiskFactor{
		Factor:      FactorVPNProxy,
		Score:       vpnProxyScore,
		Description: fmt.Sprintf("IP compartilhado por %d usuários distintos em 24h", users),
	}, nil
}

// isPrivateIP reports loopback and private ranges the heuristic ignores
func isPrivateIP(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" ||
		strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.")
}

// velocityProbe flags burst registrations from one IP inside an hour
type velocityProbe struct {
	ledger UsageLedgerRepository
}

func (p *velocityProbe) Name() string { return FactorVelocity }

func (p *velocityProbe) Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	count, err := p.ledger.CountByIP(ctx, req.IPAddress, time.Now().Add(-velocityWindow))
	if err != nil {
		return nil, err
	}
	if count < velocityLimit {
		return nil, nil
	}

	return &RiskFactor{
		Factor:      FactorVelocity,
		Score:       velocityScore,
		Description: fmt.Sprintf("%d registros do mesmo IP na última hora", count),
	}, nil
}

// couponAbuseProbe enforces a coupon's per-IP and per-fingerprint caps inside
// its cooldown window. Both caps can trigger on the same request.
type couponAbuseProbe struct {
	ledger UsageLedgerRepository
}

func (p *couponAbuseProbe) Name() string { return FactorCouponAbuse }

func (p *couponAbuseProbe) Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error) {
	if req.CouponID == nil {
		return nil, nil
	}

	coupon, err := p.ledger.GetCoupon(ctx, *req.CouponID)
	if err != nil {
		// A missing coupon contributes nothing, it is not a probe failure
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	since := time.Now().Add(-coupon.CooldownWindow())
	score := 0
	var reasons []string

	if coupon.MaxUsesPerIP > 0 {
		ipUses, err := p.ledger.CountCouponUsesByIP(ctx, coupon.ID, req.IPAddress, since)
		if err != nil {
			return nil, err
		}
		if ipUses >= coupon.MaxUsesPerIP {
			score += couponAbuseScore
			reasons = append(reasons, fmt.Sprintf("limite por IP atingido (%d usos)", ipUses))
		}
	}

	if req.Fingerprint != "" && coupon.MaxUsesPerFingerprint > 0 {
		fpUses, err := p.ledger.CountCouponUsesByFingerprint(ctx, coupon.ID, req.Fingerprint, since)
		if err != nil {
			return nil, err
		}
		if fpUses >= coupon.MaxUsesPerFingerprint {
			score += couponAbuseScore
			reasons = append(reasons, fmt.Sprintf("limite por dispositivo atingido (%d usos)", fpUses))
		}
	}

	if score == 0 {
		return nil, nil
	}

	return &RiskFactor{
		Factor:      FactorCouponAbuse,
		Score:       score,
		Description: fmt.Sprintf("Abuso de cupom %s: %s", coupon.Code, strings.Join(reasons, "; ")),
	}, nil
}

// defaultProbes returns the six built-in probes in their reporting order
func defaultProbes(ledger UsageLedgerRepository) []Probe {
	return []Probe{
		&ipReuseProbe{ledger: ledger},
		&fingerprintReuseProbe{ledger: ledger},
		&disposableEmailProbe{},
		&vpnProxyProbe{ledger: ledger},
		&velocityProbe{ledger: ledger},
		&couponAbuseProbe{ledger: ledger},
	}
}
