package render

import (
	"regexp"
	"testing"
)

func TestGetTUITheme(t *testing.T) {
	defer SetTUITheme("tokyonight")

	SetTUITheme("tokyonight")
	if got := GetTUITheme().Name; got != "tokyonight" {
		t.Errorf("GetTUITheme().Name = %q, want tokyonight", got)
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme("tokyonight")

	if !SetTUITheme("nord") {
		t.Fatal("SetTUITheme(nord) = false")
	}
	if GetTUITheme().Name != "nord" {
		t.Errorf("theme not applied: %q", GetTUITheme().Name)
	}

	if SetTUITheme("nonexistent") {
		t.Error("SetTUITheme should reject unknown names")
	}
	if GetTUITheme().Name != "nord" {
		t.Error("unknown name should leave theme unchanged")
	}
}

func TestGetTUIThemeByName(t *testing.T) {
	for _, name := range TUIThemeNames() {
		if _, ok := GetTUIThemeByName(name); !ok {
			t.Errorf("GetTUIThemeByName(%q) not found", name)
		}
	}
	if _, ok := GetTUIThemeByName("solarized"); ok {
		t.Error("unexpected theme found")
	}
}

func TestAvailableTUIThemes(t *testing.T) {
	themes := AvailableTUIThemes()
	if len(themes) != len(TUIThemeNames()) {
		t.Errorf("AvailableTUIThemes() = %d themes, names = %d", len(themes), len(TUIThemeNames()))
	}
}

func TestThemeColors_AreValidHex(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	for _, theme := range AvailableTUIThemes() {
		colors := map[string]string{
			"primary": string(theme.Primary),
			"error":   string(theme.Error),
			"success": string(theme.Success),
			"text":    string(theme.Text),
			"border":  string(theme.Border),
		}
		for field, c := range colors {
			if !hex.MatchString(c) {
				t.Errorf("%s.%s = %q is not a hex color", theme.Name, field, c)
			}
		}
	}
}
