package usecase

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"realscan/internal/domain"
	"realscan/internal/domain/model"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

func newTestUC() (*CodeUseCase, *memCodeStore, *mockClock) {
	store := newMemCodeStore()
	clock := newMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewCodeUseCase(store, clock, testLogger()), store, clock
}

func TestCodeUseCase_Generate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, store, clock := newTestUC()

	res, err := uc.Generate(ctx, 5, "minutes", "front door")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !codePattern.MatchString(res.Code) {
		t.Errorf("expected 6-digit code, got %q", res.Code)
	}
	want := clock.Now().Add(5 * time.Minute)
	if !res.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, res.ExpiresAt)
	}
	if !strings.Contains(res.Link, res.Code) {
		t.Errorf("expected link to embed the code, got %q", res.Link)
	}
	if !strings.HasPrefix(res.Link, "/scanner.html?code=") {
		t.Errorf("unexpected link shape %q", res.Link)
	}
	if store.len() != 1 {
		t.Fatalf("expected 1 persisted record, got %d", store.len())
	}

	rec := store.col.Codes[0]
	if rec.Revoked {
		t.Error("new record must not be revoked")
	}
	if rec.Note != "front door" {
		t.Errorf("expected note to persist, got %q", rec.Note)
	}
	if !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Error("expected expiresAt > createdAt")
	}
}

func TestCodeUseCase_Generate_Hours(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, clock := newTestUC()

	res, err := uc.Generate(ctx, 1, "hours", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := clock.Now().Add(time.Hour)
	if !res.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, res.ExpiresAt)
	}
}

func TestCodeUseCase_Generate_InvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, store, _ := newTestUC()

	cases := []struct {
		name     string
		duration float64
		unit     string
		wantErr  error
	}{
		{"negative duration", -1, "minutes", domain.ErrInvalidDuration},
		{"zero duration", 0, "minutes", domain.ErrInvalidDuration},
		{"nan duration", math.NaN(), "minutes", domain.ErrInvalidDuration},
		{"inf duration", math.Inf(1), "hours", domain.ErrInvalidDuration},
		{"unknown unit", 5, "days", domain.ErrInvalidUnit},
		{"empty unit", 5, "", domain.ErrInvalidUnit},
		{"case-sensitive unit", 5, "Minutes", domain.ErrInvalidUnit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := uc.Generate(ctx, tc.duration, tc.unit, "")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if res != nil {
				t.Error("expected nil result on validation failure")
			}
		})
	}
	if store.len() != 0 {
		t.Errorf("expected no records appended, got %d", store.len())
	}
	if store.saves != 0 {
		t.Errorf("expected no saves on validation failure, got %d", store.saves)
	}
}

func TestCodeUseCase_Generate_SaveFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, store, _ := newTestUC()
	store.saveErr = errors.New("disk full")

	if _, err := uc.Generate(ctx, 5, "minutes", ""); err == nil {
		t.Fatal("expected error when save fails")
	}
	if store.len() != 0 {
		t.Errorf("failed save must not leave a record behind, got %d", store.len())
	}
}

func TestCodeUseCase_Generate_UniqueWhileActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, _ := newTestUC()

	const n = 200
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		res, err := uc.Generate(ctx, 1, "hours", "")
		if err != nil {
			t.Fatalf("Generate #%d returned error: %v", i, err)
		}
		if seen[res.Code] {
			t.Fatalf("duplicate active code %q issued", res.Code)
		}
		seen[res.Code] = true
	}
}

func TestCodeUseCase_Generate_ReusesDeadCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemCodeStore()
	clock := newMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uc := NewCodeUseCase(store, clock, testLogger())

	// Pre-fill a pile of expired records sharing one value. Generation must
	// still succeed because expired records do not block reuse.
	now := clock.Now()
	for i := 0; i < 50; i++ {
		store.col.Codes = append(store.col.Codes, model.CodeRecord{
			Code:      "000001",
			CreatedAt: now.Add(-2 * time.Hour),
			ExpiresAt: now.Add(-time.Hour),
		})
	}
	if _, err := uc.Generate(ctx, 5, "minutes", ""); err != nil {
		t.Fatalf("Generate returned error with only dead collisions present: %v", err)
	}
}

func TestCodeUseCase_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, clock := newTestUC()

	first, err := uc.Generate(ctx, 5, "minutes", "first")
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}
	clock.Advance(time.Minute)
	second, err := uc.Generate(ctx, 1, "hours", "second")
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}

	views, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	// Newest first.
	if views[0].Code != second.Code || views[1].Code != first.Code {
		t.Errorf("expected newest-first order, got [%s %s]", views[0].Code, views[1].Code)
	}
	if views[0].Status != model.StatusActive {
		t.Errorf("expected active status, got %s", views[0].Status)
	}
	if views[0].RemainingSec != 3600 {
		t.Errorf("expected 3600s remaining, got %d", views[0].RemainingSec)
	}
	// first was issued for 5m one minute ago.
	if views[1].RemainingSec != 240 {
		t.Errorf("expected 240s remaining, got %d", views[1].RemainingSec)
	}
}

func TestCodeUseCase_List_Empty(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUC()
	views, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected empty list, got %d entries", len(views))
	}
}

func TestCodeUseCase_Revoke_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, store, _ := newTestUC()

	res, err := uc.Generate(ctx, 5, "minutes", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := uc.Revoke(ctx, res.Code); err != nil {
		t.Fatalf("first revoke returned error: %v", err)
	}
	if err := uc.Revoke(ctx, res.Code); err != nil {
		t.Fatalf("second revoke must succeed silently, got: %v", err)
	}
	if !store.col.Codes[0].Revoked {
		t.Error("expected record to stay revoked")
	}
}

func TestCodeUseCase_Revoke_NotFound(t *testing.T) {
	t.Parallel()

	uc, store, _ := newTestUC()
	err := uc.Revoke(context.Background(), "999999")
	if !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
	if store.saves != 0 {
		t.Errorf("revoke of unknown code must not save, got %d saves", store.saves)
	}
}

func TestCodeUseCase_Validate_Unknown(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUC()
	res, err := uc.Validate(context.Background(), "999999")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if res.OK {
		t.Error("expected ok=false for unknown code")
	}
	if res.Reason != "code not found" {
		t.Errorf("expected reason %q, got %q", "code not found", res.Reason)
	}
}

func TestCodeUseCase_Validate_Empty(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUC()
	for _, input := range []string{"", "   ", "\t\n"} {
		if _, err := uc.Validate(context.Background(), input); !errors.Is(err, domain.ErrEmptyCode) {
			t.Errorf("input %q: expected ErrEmptyCode, got %v", input, err)
		}
	}
}

func TestCodeUseCase_Validate_Active(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, clock := newTestUC()

	gen, err := uc.Generate(ctx, 5, "minutes", "gate A")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Leading/trailing whitespace is trimmed before matching.
	res, err := uc.Validate(ctx, "  "+gen.Code+" ")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected ok=true, got reason %q", res.Reason)
	}
	if res.Code != gen.Code {
		t.Errorf("expected code %s, got %s", gen.Code, res.Code)
	}
	if res.Note != "gate A" {
		t.Errorf("expected note to round-trip, got %q", res.Note)
	}
	if res.ExpiresAt == nil || !res.ExpiresAt.Equal(gen.ExpiresAt) {
		t.Errorf("expected expiresAt %v, got %v", gen.ExpiresAt, res.ExpiresAt)
	}
	if !res.Now.Equal(clock.Now()) {
		t.Errorf("expected now %v, got %v", clock.Now(), res.Now)
	}
}

func TestCodeUseCase_Validate_Revoked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, _ := newTestUC()

	gen, err := uc.Generate(ctx, 5, "minutes", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := uc.Revoke(ctx, gen.Code); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	res, err := uc.Validate(ctx, gen.Code)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if res.OK {
		t.Error("expected ok=false for revoked code")
	}
	if res.Reason != string(model.StatusRevoked) {
		t.Errorf("expected reason %q, got %q", model.StatusRevoked, res.Reason)
	}
}

func TestCodeUseCase_Validate_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, clock := newTestUC()

	gen, err := uc.Generate(ctx, 1, "hours", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	clock.Advance(3601 * time.Second)
	res, err := uc.Validate(ctx, gen.Code)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if res.OK {
		t.Error("expected ok=false after expiry")
	}
	if res.Reason != string(model.StatusExpired) {
		t.Errorf("expected reason %q, got %q", model.StatusExpired, res.Reason)
	}
}

func TestCodeUseCase_Validate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _, clock := newTestUC()

	gen, err := uc.Generate(ctx, 1, "minutes", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// At the exact expiry instant the code is already expired, not active.
	clock.Advance(time.Minute)
	res, err := uc.Validate(ctx, gen.Code)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if res.OK {
		t.Error("expected ok=false at the exact expiry instant")
	}
	if res.Reason != string(model.StatusExpired) {
		t.Errorf("expected reason %q, got %q", model.StatusExpired, res.Reason)
	}
}

func TestCodeUseCase_Validate_DoesNotMutate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, store, _ := newTestUC()

	gen, err := uc.Generate(ctx, 5, "minutes", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	savesBefore := store.saves

	for i := 0; i < 3; i++ {
		res, err := uc.Validate(ctx, gen.Code)
		if err != nil {
			t.Fatalf("Validate #%d returned error: %v", i, err)
		}
		if !res.OK {
			t.Fatalf("Validate #%d: expected ok=true, got reason %q", i, res.Reason)
		}
	}
	if store.saves != savesBefore {
		t.Errorf("validate must not write to the store (saves %d -> %d)", savesBefore, store.saves)
	}
}
