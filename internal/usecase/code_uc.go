package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"realscan/internal/domain"
	"realscan/internal/domain/model"
	"realscan/internal/domain/ports"
	"realscan/internal/domain/ports/repository"
)

// maxGenerateAttempts bounds the collision-retry loop. The code space is 10^6
// and collisions only count against currently active codes, so in practice the
// first candidate almost always wins; the cap turns a pathological store into
// an explicit error instead of a spin.
const maxGenerateAttempts = 10000

// codeSpace is the number of distinct 6-digit codes.
var codeSpace = big.NewInt(1000000)

// GenerateResult is the outcome of issuing a new code.
type GenerateResult struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	Link      string    `json:"link"`
}

// CodeView is a listed code with its derived state attached at read time.
type CodeView struct {
	Code         string           `json:"code"`
	Note         string           `json:"note"`
	CreatedAt    time.Time        `json:"createdAt"`
	ExpiresAt    time.Time        `json:"expiresAt"`
	Status       model.CodeStatus `json:"status"`
	RemainingSec int64            `json:"remainingSec"`
}

// ValidationResult is the outcome of a scanner presenting a code. Business
// rejections (unknown, expired, revoked) are normal results with OK=false and
// a Reason, not errors.
type ValidationResult struct {
	OK        bool       `json:"ok"`
	Reason    string     `json:"reason,omitempty"`
	Code      string     `json:"code,omitempty"`
	Note      string     `json:"note"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Now       time.Time  `json:"now"`
}

// CodeUseCase owns the access-code lifecycle: generation, listing, revocation
// and validation. Every operation re-loads the collection from the store, so
// mutations by other callers are observed on the next call.
//
// Generate and Revoke serialize on an in-process mutex around their
// load-mutate-save sequence; List and Validate read fresh snapshots without
// taking the lock. Writers in other processes can still race on the same
// backing store (single-process deployment assumption).
type CodeUseCase struct {
	mu    sync.Mutex
	store repository.CodeStore
	clock ports.Clock
	log   *zerolog.Logger
}

// NewCodeUseCase constructs a CodeUseCase.
func NewCodeUseCase(store repository.CodeStore, clock ports.Clock, logger *zerolog.Logger) *CodeUseCase {
	ucLog := logger.With().Str("component", "CodeUseCase").Logger()
	return &CodeUseCase{
		store: store,
		clock: clock,
		log:   &ucLog,
	}
}

// Generate issues a new code valid for duration units from now and persists it.
// duration must be a positive finite number and unit exactly "minutes" or
// "hours". The returned link embeds the code for hand-off to the scanner page.
func (uc *CodeUseCase) Generate(ctx context.Context, duration float64, unit, note string) (*GenerateResult, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, domain.ErrInvalidDuration
	}
	var unitDur time.Duration
	switch unit {
	case "minutes":
		unitDur = time.Minute
	case "hours":
		unitDur = time.Hour
	default:
		return nil, domain.ErrInvalidUnit
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	col, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}

	now := uc.clock.Now()
	code, err := freeCode(col, now)
	if err != nil {
		return nil, err
	}

	rec := model.CodeRecord{
		Code:      code,
		Note:      note,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(duration * float64(unitDur))),
		Revoked:   false,
	}
	col.Codes = append(col.Codes, rec)
	if err := uc.store.Save(ctx, col); err != nil {
		return nil, fmt.Errorf("save codes: %w", err)
	}

	uc.log.Info().Str("code", code).Time("expires_at", rec.ExpiresAt).Msg("code issued")
	return &GenerateResult{
		Code:      code,
		ExpiresAt: rec.ExpiresAt,
		Link:      "/scanner.html?code=" + url.QueryEscape(code),
	}, nil
}

// freeCode draws uniform 6-digit candidates until one does not collide with a
// currently active record. Revoked or expired records never block reuse of
// their numeric value.
func freeCode(col model.CodeCollection, now time.Time) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, codeSpace)
		if err != nil {
			return "", fmt.Errorf("draw random code: %w", err)
		}
		code := fmt.Sprintf("%06d", n.Int64())
		if !activeCodeExists(col, code, now) {
			return code, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

func activeCodeExists(col model.CodeCollection, code string, now time.Time) bool {
	for i := range col.Codes {
		if col.Codes[i].Code == code && col.Codes[i].IsActive(now) {
			return true
		}
	}
	return false
}

// List returns all codes newest-first with status and remaining time computed
// against a single instant taken at call time. Read-only.
func (uc *CodeUseCase) List(ctx context.Context) ([]CodeView, error) {
	col, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}

	now := uc.clock.Now()
	views := make([]CodeView, 0, len(col.Codes))
	for i := range col.Codes {
		rec := &col.Codes[i]
		views = append(views, CodeView{
			Code:         rec.Code,
			Note:         rec.Note,
			CreatedAt:    rec.CreatedAt,
			ExpiresAt:    rec.ExpiresAt,
			Status:       rec.Status(now),
			RemainingSec: rec.RemainingSeconds(now),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// Revoke marks the first record with the given code (in stored order) as
// revoked and persists the collection. Revoking an already-revoked code
// succeeds silently. Codes can repeat across dead records; generation only
// keeps active codes unique, so first-match is the documented tie-break.
func (uc *CodeUseCase) Revoke(ctx context.Context, code string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	col, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load codes: %w", err)
	}

	for i := range col.Codes {
		if col.Codes[i].Code != code {
			continue
		}
		col.Codes[i].Revoked = true
		if err := uc.store.Save(ctx, col); err != nil {
			return fmt.Errorf("save codes: %w", err)
		}
		uc.log.Info().Str("code", code).Msg("code revoked")
		return nil
	}
	return domain.ErrCodeNotFound
}

// Validate checks a presented code and reports its current state. It never
// mutates anything; repeated calls give the same answer modulo time passing.
// Matching uses the same first-in-stored-order rule as Revoke.
func (uc *CodeUseCase) Validate(ctx context.Context, code string) (*ValidationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyCode
	}

	col, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}

	now := uc.clock.Now()
	for i := range col.Codes {
		rec := &col.Codes[i]
		if rec.Code != code {
			continue
		}
		exp := rec.ExpiresAt
		status := rec.Status(now)
		if status != model.StatusActive {
			return &ValidationResult{
				OK:        false,
				Reason:    string(status),
				Note:      rec.Note,
				ExpiresAt: &exp,
				Now:       now,
			}, nil
		}
		return &ValidationResult{
			OK:        true,
			Code:      rec.Code,
			Note:      rec.Note,
			ExpiresAt: &exp,
			Now:       now,
		}, nil
	}
	return &ValidationResult{OK: false, Reason: "code not found", Now: now}, nil
}
