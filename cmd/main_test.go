package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
)

func TestExecute_FlushesMetricsOnFailure(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	var err error
	if cfg, err = config.FromEnv(); err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	cfg.LogFormat = "json"
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "ownership.prom")

	boom := errors.New("boom")
	rootCmd := createRootCmd()
	rootCmd.AddCommand(&cobra.Command{
		Use:  "fail",
		RunE: func(*cobra.Command, []string) error { return boom },
	})
	rootCmd.SetArgs([]string{"fail"})

	if err := execute(context.Background(), rootCmd); !errors.Is(err, boom) {
		t.Fatalf("execute() = %v, want %v", err, boom)
	}
	data, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(data), "last_run") {
		t.Errorf("textfile missing last run gauge:\n%s", data)
	}
}
