package main

import (
	"testing"

	"github.com/redpill/redpill/pkg/config"
	"github.com/redpill/redpill/pkg/technique"
	"github.com/redpill/redpill/pkg/verdict"
)

func TestConfigFileFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"-v"}, ""},
		{[]string{"-config", "redpill.yaml"}, "redpill.yaml"},
		{[]string{"--config", "redpill.yaml"}, "redpill.yaml"},
		{[]string{"-config=conf/redpill.yaml"}, "conf/redpill.yaml"},
		{[]string{"-v", "--config=x.yaml", "-c", "2"}, "x.yaml"},
	}
	for _, tc := range cases {
		if got := configFileFromArgs(tc.args); got != tc.want {
			t.Errorf("configFileFromArgs(%v) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestSelectTechniques(t *testing.T) {
	// Technique packs are registered via the blank imports in main.go.
	cfg := config.Default()
	all := selectTechniques(cfg)
	if len(all) != technique.DefaultRegistry.Len() {
		t.Errorf("no filter should select everything: %d != %d",
			len(all), technique.DefaultRegistry.Len())
	}

	cfg.Techniques = "vmid"
	only := selectTechniques(cfg)
	if len(only) != 1 || only[0].Name() != "vmid" {
		t.Errorf("include filter = %v", names(only))
	}

	cfg = config.Default()
	cfg.SkipTechniques = "vmid"
	rest := selectTechniques(cfg)
	if len(rest) != technique.DefaultRegistry.Len()-1 {
		t.Errorf("skip filter kept %d of %d", len(rest), technique.DefaultRegistry.Len())
	}
	for _, tech := range rest {
		if tech.Name() == "vmid" {
			t.Error("skip filter did not remove vmid")
		}
	}
}

func TestRunDispatch(t *testing.T) {
	if code := run(nil); code != verdict.Configuration.Int() {
		t.Errorf("no args = %d", code)
	}
	if code := run([]string{"bogus"}); code != verdict.Configuration.Int() {
		t.Errorf("unknown command = %d", code)
	}
	if code := run([]string{"version"}); code != 0 {
		t.Errorf("version = %d", code)
	}
	if code := run([]string{"help"}); code != 0 {
		t.Errorf("help = %d", code)
	}
	if code := run([]string{"list", "-no-color"}); code != 0 {
		t.Errorf("list = %d", code)
	}
}

func names(techniques []technique.Technique) []string {
	out := make([]string, len(techniques))
	for i, t := range techniques {
		out[i] = t.Name()
	}
	return out
}
