package app

import (
	"context"
	"encoding/json"

	"go.trai.ch/notekeep/internal/adapters/catalog"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Query runs a read-only tool against the live cache file or the backup
// file. An empty from selects the configured query source.
func (a *App) Query(ctx context.Context, from, tool string, args map[string]any) (tools.Result, error) {
	cfg, err := a.Config()
	if err != nil {
		return tools.Result{}, err
	}

	var path string
	switch from {
	case "":
		path = cfg.QueryPath()
	case domain.QuerySourceLive:
		path = cfg.CachePath
	case domain.QuerySourceBackup:
		path = domain.BackupFilePath(cfg.BackupDir)
	default:
		return tools.Result{}, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "query source must be source or backup"), "from", from)
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return tools.Result{}, zerr.Wrap(err, "failed to encode tool arguments")
	}

	holder := catalog.NewHolder(path, a.source, a.parser, a.logger)
	toolbox := tools.New(holder, nil, cfg.Location, cfg.CachePath)

	return toolbox.Call(ctx, tool, raw)
}
