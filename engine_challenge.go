package authtrust

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssueChallenge generates a one-time code for the identity, stores it
// under a fresh challenge ID, and delivers it to destination over the
// requested method. A delivery failure is reported through
// ChallengeInfo.Delivered, not an error; the challenge stays valid so the
// caller can retry delivery or fall back to another method.
//
// Authenticator verification needs no issued challenge; use
// [Engine.VerifyAuthenticator] directly.
func (e *Engine) IssueChallenge(ctx context.Context, identity string, method DeliveryMethod, destination string) (*ChallengeInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if identity == "" {
		return nil, ErrInvalidIdentity
	}

	var sender Sender
	switch method {
	case MethodSMS:
		sender = e.smsSender
	case MethodEmail:
		sender = e.emailSender
	default:
		return nil, ErrInvalidMethod
	}
	if sender == nil {
		return nil, ErrDeliveryUnavailable
	}

	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	factor := AuthFactor{
		ChallengeID: uuid.NewString(),
		Identity:    identity,
		Method:      method,
		Code:        code,
		ExpiresAt:   e.now().Add(e.config.OTP.TTL),
	}
	e.challenges.Put(factor)
	e.metrics.Inc(MetricOTPIssued)

	delivered := e.send(ctx, method, sender, destination, code)

	return &ChallengeInfo{
		ChallengeID: factor.ChallengeID,
		Method:      method,
		ExpiresAt:   factor.ExpiresAt,
		Delivered:   delivered,
	}, nil
}

// SendSMSOTP delivers code to phone over the configured SMS sender and
// reports success. Sender panics and errors are contained here; the method
// never propagates either.
func (e *Engine) SendSMSOTP(ctx context.Context, phone, code string) bool {
	if e == nil || e.smsSender == nil {
		return false
	}
	return e.send(ctx, MethodSMS, e.smsSender, phone, code)
}

// SendEmailOTP delivers code to address over the configured email sender
// and reports success.
func (e *Engine) SendEmailOTP(ctx context.Context, address, code string) bool {
	if e == nil || e.emailSender == nil {
		return false
	}
	return e.send(ctx, MethodEmail, e.emailSender, address, code)
}

func (e *Engine) send(ctx context.Context, method DeliveryMethod, sender Sender, destination, code string) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.Inc(MetricOTPDeliveryFailure)
			e.logger.Error("sender panicked",
				zap.String("method", string(method)),
				zap.Any("panic", r),
			)
			delivered = false
		}
	}()

	if err := sender.Send(ctx, destination, code); err != nil {
		e.metrics.Inc(MetricOTPDeliveryFailure)
		e.logger.Warn("code delivery failed",
			zap.String("method", string(method)),
			zap.Error(err),
		)
		return false
	}
	return true
}

// VerifyChallenge checks code against the issued challenge. Each call
// spends one attempt from the identity's budget; an exhausted budget
// returns [ErrRateLimited] with RetryAfter set on the result. A successful
// verification consumes the challenge, resets the budget, and mints a
// grant when grants are enabled. Wrong, expired, replayed, and unknown
// codes all verify false without error.
func (e *Engine) VerifyChallenge(ctx context.Context, identity, challengeID, code string) (VerifyResult, error) {
	if e == nil {
		return VerifyResult{}, ErrEngineNotReady
	}
	if identity == "" {
		return VerifyResult{}, ErrInvalidIdentity
	}

	start := e.now()
	defer func() {
		e.metrics.Observe(MetricVerifyLatency, e.now().Sub(start))
	}()

	decision, err := e.limiter.CheckAttempt(ctx, identity)
	if err != nil {
		return VerifyResult{}, err
	}
	if !decision.Allowed {
		e.metrics.Inc(MetricAttemptRateLimited)
		e.onAttemptsExhausted(ctx, identity, decision)
		return VerifyResult{RetryAfter: decision.RetryAfter}, ErrRateLimited
	}

	result := VerifyResult{Remaining: decision.Remaining, RetryAfter: decision.RetryAfter}

	switch e.challenges.Consume(challengeID, identity, code) {
	case challengeOK:
		if err := e.limiter.Reset(ctx, identity); err != nil {
			e.logger.Warn("attempt budget reset failed", zap.Error(err))
		}
		e.metrics.Inc(MetricOTPVerified)
		result.Verified = true
		result.Grant = e.issueGrant(identity, e.challengeMethod(challengeID))
		return result, nil
	case challengeExpired:
		e.metrics.Inc(MetricOTPExpired)
	case challengeReplayed:
		e.metrics.Inc(MetricOTPReplay)
		e.emitEvent(ctx, identity, ActivityFailed2FA, SeverityMedium, ActionVerify, map[string]string{
			"reason":    "challenge_replay",
			"client_ip": clientIPFromContext(ctx),
		})
	case challengeMismatch:
		e.metrics.Inc(MetricOTPInvalid)
	case challengeNotFound:
		e.metrics.Inc(MetricOTPInvalid)
	}

	return result, nil
}

// VerifyAuthenticator checks a TOTP code from the identity's provisioned
// authenticator secret, spending one attempt from the same budget as
// delivered codes. The secret is the unpadded base32 string handed out at
// provisioning; the caller holds it.
func (e *Engine) VerifyAuthenticator(ctx context.Context, identity, secretBase32, code string) (VerifyResult, error) {
	if e == nil {
		return VerifyResult{}, ErrEngineNotReady
	}
	if identity == "" {
		return VerifyResult{}, ErrInvalidIdentity
	}

	start := e.now()
	defer func() {
		e.metrics.Observe(MetricVerifyLatency, e.now().Sub(start))
	}()

	decision, err := e.limiter.CheckAttempt(ctx, identity)
	if err != nil {
		return VerifyResult{}, err
	}
	if !decision.Allowed {
		e.metrics.Inc(MetricAttemptRateLimited)
		e.onAttemptsExhausted(ctx, identity, decision)
		return VerifyResult{RetryAfter: decision.RetryAfter}, ErrRateLimited
	}

	result := VerifyResult{Remaining: decision.Remaining, RetryAfter: decision.RetryAfter}

	secret, err := decodeBase32Secret(secretBase32)
	if err != nil {
		e.metrics.Inc(MetricTOTPFailure)
		return result, nil
	}

	ok, _, err := e.totp.VerifyCode(secret, code, e.now())
	if err != nil {
		return result, err
	}
	if !ok {
		e.metrics.Inc(MetricTOTPFailure)
		return result, nil
	}

	if err := e.limiter.Reset(ctx, identity); err != nil {
		e.logger.Warn("attempt budget reset failed", zap.Error(err))
	}
	e.metrics.Inc(MetricTOTPSuccess)
	result.Verified = true
	result.Grant = e.issueGrant(identity, MethodAuthenticator)
	return result, nil
}

// ProvisionAuthenticator mints a fresh TOTP secret for the account and
// returns it with the otpauth:// URI for QR display. The engine keeps no
// copy; the caller persists the secret.
func (e *Engine) ProvisionAuthenticator(account string) (*AuthenticatorProvision, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if account == "" {
		return nil, ErrInvalidIdentity
	}

	_, encoded, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	return &AuthenticatorProvision{
		SecretBase32: encoded,
		URI:          e.totp.ProvisionURI(encoded, account),
	}, nil
}

// GenerateRecoveryCodes returns a batch of backup codes alongside their
// SHA-256 hashes. The caller shows the plaintext once and persists only the
// hashes.
func (e *Engine) GenerateRecoveryCodes() ([]string, [][32]byte, error) {
	if e == nil {
		return nil, nil, ErrEngineNotReady
	}

	codes, err := GenerateBackupCodes(e.config.BackupCodes.Count)
	if err != nil {
		return nil, nil, err
	}

	hashes := make([][32]byte, len(codes))
	for i, c := range codes {
		hashes[i] = HashBackupCode(c)
	}

	e.metrics.Inc(MetricBackupCodesGenerated)
	return codes, hashes, nil
}

// VerifyRecoveryCode checks code against the caller-held hash set,
// spending one attempt from the identity's budget. On success the matched
// hash is removed from the returned set; the caller persists the new set.
func (e *Engine) VerifyRecoveryCode(ctx context.Context, identity, code string, stored [][32]byte) (VerifyResult, [][32]byte, error) {
	if e == nil {
		return VerifyResult{}, stored, ErrEngineNotReady
	}
	if identity == "" {
		return VerifyResult{}, stored, ErrInvalidIdentity
	}

	decision, err := e.limiter.CheckAttempt(ctx, identity)
	if err != nil {
		return VerifyResult{}, stored, err
	}
	if !decision.Allowed {
		e.metrics.Inc(MetricAttemptRateLimited)
		e.onAttemptsExhausted(ctx, identity, decision)
		return VerifyResult{RetryAfter: decision.RetryAfter}, stored, ErrRateLimited
	}

	result := VerifyResult{Remaining: decision.Remaining, RetryAfter: decision.RetryAfter}

	remaining, ok := ConsumeBackupCode(code, stored)
	if !ok {
		e.metrics.Inc(MetricBackupCodeFailed)
		return result, stored, nil
	}

	if err := e.limiter.Reset(ctx, identity); err != nil {
		e.logger.Warn("attempt budget reset failed", zap.Error(err))
	}
	e.metrics.Inc(MetricBackupCodeUsed)
	result.Verified = true
	result.Grant = e.issueGrant(identity, MethodAuthenticator)
	return result, remaining, nil
}

// ValidateGrant checks a verification grant's signature, issuer, and
// expiry. Returns [ErrGrantInvalid] on any failure.
func (e *Engine) ValidateGrant(token string) (*GrantClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.grants == nil {
		return nil, ErrGrantsDisabled
	}

	claims, err := e.grants.Validate(token)
	if err != nil {
		if !errors.Is(err, ErrGrantsDisabled) {
			e.metrics.Inc(MetricGrantRejected)
		}
		return nil, err
	}
	return claims, nil
}

func (e *Engine) issueGrant(identity string, method DeliveryMethod) string {
	if e.grants == nil {
		return ""
	}
	grant, err := e.grants.Issue(identity, method)
	if err != nil {
		e.logger.Error("grant issuance failed", zap.Error(err))
		return ""
	}
	e.metrics.Inc(MetricGrantIssued)
	return grant
}

// onAttemptsExhausted records a failed_2fa event when the identity's
// attempt budget is spent.
func (e *Engine) onAttemptsExhausted(ctx context.Context, identity string, decision AttemptDecision) {
	e.emitEvent(ctx, identity, ActivityFailed2FA, SeverityMedium, ActionAlert, map[string]string{
		"reason":        "attempt_budget_exhausted",
		"max_attempts":  strconv.Itoa(e.config.RateLimit.MaxAttempts),
		"window":        e.config.RateLimit.Window.String(),
		"retry_after_s": strconv.FormatInt(int64(decision.RetryAfter/time.Second), 10),
		"client_ip":     clientIPFromContext(ctx),
	})
}

func (e *Engine) challengeMethod(challengeID string) DeliveryMethod {
	if f, ok := e.challenges.Get(challengeID); ok {
		return f.Method
	}
	return ""
}
