package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Shahin2512/HCP-Module/internal/config"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/orchestrator"
	"github.com/Shahin2512/HCP-Module/internal/remote"
)

// newRemote builds the record store client. Tests replace it.
var newRemote = func(cfg config.Config) orchestrator.Remote {
	return remote.New(cfg.Remote.BaseURL, cfg.Remote.Timeout)
}

func newOrchestrator(cfg config.Config) *orchestrator.Orchestrator {
	return orchestrator.New(newRemote(cfg),
		orchestrator.WithLogger(slog.Default()),
		orchestrator.WithDefaultReply(cfg.Chat.DefaultReply),
	)
}

// outcomeError turns a failed or rejected outcome into a CLI error.
func outcomeError(out orchestrator.Outcome) error {
	switch v := out.(type) {
	case orchestrator.Failed:
		var re *remote.Error
		if errors.As(v.Err, &re) && re.StatusCode == 0 {
			return fmt.Errorf("record store not reachable, is `hcpcrm serve` running? (%s)", v.Detail)
		}
		return fmt.Errorf("%s failed: %s", v.Op, v.Detail)
	case orchestrator.Rejected:
		var ve *model.ValidationError
		if errors.As(v.Err, &ve) {
			return fmt.Errorf("%s: %s", ve.Field, ve.Message)
		}
		return v.Err
	}
	return nil
}
