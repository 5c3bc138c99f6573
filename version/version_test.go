package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime, origGoVersion := Version, GitCommit, BuildTime, GoVersion
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
		GoVersion = origGoVersion
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	GitCommit = ""
	BuildTime = ""
	GoVersion = ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetVersionInfoWithBuildTime(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	BuildTime = "2024-01-15T10:30:00Z"
	GitCommit = "abc1234"
	GoVersion = "go1.22.0"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" || info.GoVersion != "go1.22.0" {
		t.Errorf("ldflags values should win: %+v", info)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestGetVersionInfoDirtyVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0-dirty"
	if GetVersionInfo().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestGetShortVersionWithCommit(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"

	sv := GetShortVersion()
	if !strings.HasPrefix(sv, "1.0.0-abc1234") {
		t.Errorf("expected '1.0.0-abc1234', got %q", sv)
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("shortCommit = %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("shortCommit = %q", got)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"bare", Info{Version: "dev"}, "nativefetch dev"},
		{"commit", Info{Version: "1.2.0", GitCommit: "abc1234"}, "nativefetch 1.2.0 (abc1234)"},
		{"dirty", Info{Version: "1.2.0", GitCommit: "abc1234", IsDirty: true}, "nativefetch 1.2.0 (abc1234, dirty)"},
		{
			"full",
			Info{Version: "1.2.0", BuildDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), GoVersion: "go1.22"},
			"nativefetch 1.2.0 built 2024-01-15T10:30:00Z go1.22",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "2.0.1"
	if got := UserAgent(); got != "nativefetch/2.0.1" {
		t.Errorf("UserAgent() = %q", got)
	}
}
