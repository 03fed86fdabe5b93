package core

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SettingsKey is the key of the single live settings row.
const SettingsKey = "current"

// Settings is the normalized presentation and company configuration read by
// document renderers. Stored values are merged over DefaultSettings.
type Settings struct {
	ID uuid.UUID `json:"id"`

	Theme            string `json:"theme"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`

	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	InvoiceReminders   bool `json:"invoiceReminders"`

	CompanyName    string `json:"companyName"`
	CompanyEmail   string `json:"companyEmail"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyAddress string `json:"companyAddress"`
	CompanyGST     string `json:"companyGST"`
	CompanyPAN     string `json:"companyPAN"`
	CompanyMSME    string `json:"companyMSME"`

	DefaultTaxRate      float64 `json:"defaultTaxRate"`
	DefaultPaymentTerms int     `json:"defaultPaymentTerms"`
	InvoicePrefix       string  `json:"invoicePrefix"`

	TwoFactorAuth  bool `json:"twoFactorAuth"`
	SessionTimeout int  `json:"sessionTimeout"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DefaultSettings returns the built-in values as a JSON document.
func DefaultSettings() map[string]any {
	return map[string]any{
		"theme":            "light",
		"sidebarCollapsed": false,

		"emailNotifications": true,
		"pushNotifications":  false,
		"invoiceReminders":   true,

		"companyName":    "FedHub Software Solutions",
		"companyEmail":   "info@fedhubsoftware.com",
		"companyPhone":   "+91 9003285428",
		"companyAddress": "P No 69,70 Gokula Nandhana, Gokul Nagar, Hosur, Krishnagiri-DT, Tamilnadu, India-635109",
		"companyGST":     "33AACCF2123P1Z5",
		"companyPAN":     "AACCF2123P",
		"companyMSME":    "UDYAM-TN-06-0012345",

		"defaultTaxRate":      float64(18),
		"defaultPaymentTerms": float64(30),
		"invoicePrefix":       "INV",

		"twoFactorAuth":  false,
		"sessionTimeout": float64(60),
	}
}

// SanitizeSettingsPatch keeps only known keys with acceptable types and clamps
// numeric settings into range. Unknown or mistyped keys are dropped.
func SanitizeSettingsPatch(body map[string]any) map[string]any {
	out := map[string]any{}

	if v, ok := body["theme"].(string); ok && v != "" {
		if v == "dark" {
			out["theme"] = "dark"
		} else {
			out["theme"] = "light"
		}
	}

	for _, key := range []string{"sidebarCollapsed", "emailNotifications", "pushNotifications", "invoiceReminders", "twoFactorAuth"} {
		if v, ok := body[key].(bool); ok {
			out[key] = v
		}
	}

	for _, key := range []string{"companyName", "companyEmail", "companyPhone", "companyAddress", "invoicePrefix"} {
		if v, ok := body[key].(string); ok {
			out[key] = v
		}
	}
	for _, key := range []string{"companyGST", "companyPAN", "companyMSME"} {
		if v, ok := body[key].(string); ok {
			out[key] = strings.ToUpper(v)
		}
	}

	if raw, present := body["defaultTaxRate"]; present && raw != nil {
		if v, ok := toNumber(raw); ok {
			out["defaultTaxRate"] = math.Max(0, math.Min(100, v))
		} else {
			out["defaultTaxRate"] = float64(18)
		}
	}
	if raw, present := body["defaultPaymentTerms"]; present && raw != nil {
		if v, ok := toNumber(raw); ok {
			out["defaultPaymentTerms"] = math.Max(1, math.Floor(v))
		} else {
			out["defaultPaymentTerms"] = float64(30)
		}
	}
	if raw, present := body["sessionTimeout"]; present && raw != nil {
		if v, ok := toNumber(raw); ok {
			out["sessionTimeout"] = math.Max(5, math.Floor(v))
		} else {
			out["sessionTimeout"] = float64(60)
		}
	}

	return out
}

// MergeSettings overlays patch onto base without modifying either.
func MergeSettings(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// NormalizeSettings reads a stored document, substituting defaults for missing values.
func NormalizeSettings(value map[string]any) Settings {
	d := DefaultSettings()
	str := func(key string) string {
		if v, ok := value[key].(string); ok {
			return v
		}
		return d[key].(string)
	}
	num := func(key string) float64 {
		if v, ok := toNumber(value[key]); ok {
			return v
		}
		v, _ := toNumber(d[key])
		return v
	}
	flag := func(key string) bool {
		v, _ := value[key].(bool)
		return v
	}

	theme := "light"
	if value["theme"] == "dark" {
		theme = "dark"
	}

	return Settings{
		Theme:               theme,
		SidebarCollapsed:    flag("sidebarCollapsed"),
		EmailNotifications:  flag("emailNotifications"),
		PushNotifications:   flag("pushNotifications"),
		InvoiceReminders:    flag("invoiceReminders"),
		CompanyName:         str("companyName"),
		CompanyEmail:        str("companyEmail"),
		CompanyPhone:        str("companyPhone"),
		CompanyAddress:      str("companyAddress"),
		CompanyGST:          str("companyGST"),
		CompanyPAN:          str("companyPAN"),
		CompanyMSME:         str("companyMSME"),
		DefaultTaxRate:      num("defaultTaxRate"),
		DefaultPaymentTerms: int(num("defaultPaymentTerms")),
		InvoicePrefix:       str("invoicePrefix"),
		TwoFactorAuth:       flag("twoFactorAuth"),
		SessionTimeout:      int(num("sessionTimeout")),
	}
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SettingsService persists the settings document.
type SettingsService interface {
	// GetSettings returns the live settings, creating the row from defaults on first use.
	GetSettings(ctx context.Context) (*Settings, error)

	// PatchSettings merges a sanitized patch into the stored document.
	PatchSettings(ctx context.Context, body map[string]any) (*Settings, error)

	// ReplaceSettings stores defaults overlaid with the sanitized body.
	ReplaceSettings(ctx context.Context, body map[string]any) (*Settings, error)

	// SettingsHistory lists stored settings rows, most recently updated first.
	SettingsHistory(ctx context.Context, limit int) ([]Settings, error)
}
