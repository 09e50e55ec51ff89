package cli

import (
	"runtime/debug"
	"testing"
)

func TestCurrentVersionInfoFallback(t *testing.T) {
	orig := readBuildInfo
	defer func() { readBuildInfo = orig }()
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	info := currentVersionInfo()
	if info.Version != "devel" {
		t.Errorf("Version = %q, want devel", info.Version)
	}
	if info.ModulePath != defaultModulePath {
		t.Errorf("ModulePath = %q", info.ModulePath)
	}
}

func TestNormalizeVersion(t *testing.T) {
	if got := normalizeVersion("(devel)"); got != "devel" {
		t.Errorf("normalizeVersion((devel)) = %q", got)
	}
	if got := normalizeVersion("v1.2.3"); got != "v1.2.3" {
		t.Errorf("normalizeVersion(v1.2.3) = %q", got)
	}
}
