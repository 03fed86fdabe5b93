package core_test

import (
	"context"
	"testing"
)

func TestSettings_DefaultsPatchAndReplace(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	st, err := svc.settings.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if st.Theme != "light" || st.DefaultTaxRate != 18 {
		t.Errorf("expected defaults, got theme %s tax %v", st.Theme, st.DefaultTaxRate)
	}

	patched, err := svc.settings.PatchSettings(ctx, map[string]any{"theme": "dark", "defaultTaxRate": float64(12)})
	if err != nil {
		t.Fatalf("patch settings: %v", err)
	}
	if patched.Theme != "dark" || patched.DefaultTaxRate != 12 || patched.CompanyName != st.CompanyName {
		t.Errorf("unexpected patched settings: %+v", patched)
	}

	replaced, err := svc.settings.ReplaceSettings(ctx, map[string]any{"companyName": "New Co"})
	if err != nil {
		t.Fatalf("replace settings: %v", err)
	}
	if replaced.Theme != "light" || replaced.CompanyName != "New Co" {
		t.Errorf("replace must start from defaults: %+v", replaced)
	}

	history, err := svc.settings.SettingsHistory(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != st.ID {
		t.Errorf("expected the single live row in history, got %d", len(history))
	}
}
