package workflow

import (
	"fmt"
	"os"

	"cinelake/internal/config"
	"cinelake/internal/contracts"
	"cinelake/internal/lake"
	"cinelake/internal/stage"
)

// HealthChecks probes the pipeline's dependencies without mutating them.
func HealthChecks(cfg *config.Config) []stage.Health {
	checks := make([]stage.Health, 0, 4)

	if err := cfg.Validate(); err != nil {
		checks = append(checks, stage.Unhealthy("config", err.Error()))
	} else {
		checks = append(checks, stage.Healthy("config"))
	}

	if _, err := contracts.Load(cfg.Sources.ContractsFile, cfg.Sources.MappingsFile); err != nil {
		checks = append(checks, stage.Unhealthy("contracts", err.Error()))
	} else {
		checks = append(checks, stage.Healthy("contracts"))
	}

	if info, err := os.Stat(cfg.Paths.IncomingDir); err != nil {
		checks = append(checks, stage.Unhealthy("incoming", err.Error()))
	} else if !info.IsDir() {
		checks = append(checks, stage.Unhealthy("incoming", fmt.Sprintf("%s is not a directory", cfg.Paths.IncomingDir)))
	} else {
		checks = append(checks, stage.Healthy("incoming"))
	}

	store, err := lake.Open(cfg)
	if err != nil {
		checks = append(checks, stage.Unhealthy("lake", err.Error()))
	} else {
		_ = store.Close()
		checks = append(checks, stage.Healthy("lake"))
	}

	return checks
}
