package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matsen/rexplorer/internal/budget"
	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/config"
	"github.com/matsen/rexplorer/internal/explorer"
	"github.com/matsen/rexplorer/internal/literature"
	"github.com/matsen/rexplorer/internal/llm"
	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/storage"
)

// needs names the external services a command calls.
type needs struct {
	keywords   bool
	literature bool
}

// workspace is an opened .rex directory with its session restored.
type workspace struct {
	root     string
	settings config.Settings
	log      *logger.Logger
	exp      *explorer.Explorer
	lit      *literature.Cached // nil unless the command fetches literature
}

// mustOpenWorkspace finds the workspace, resolves settings, wires the
// requested services and restores the saved session. Exits on error.
func mustOpenWorkspace(ctx context.Context, n needs) *workspace {
	root := mustFindWorkspace()

	wsCfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	settings, err := config.Resolve(global, wsCfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	log, err := logger.New(settings.LogMode)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	key, err := collection.KeyFuncByName(settings.CollectionKey)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	cfg := explorer.Config{
		Budget:        budget.New(settings.IterationLimit),
		Logger:        log,
		Timeout:       settings.ActionTimeout,
		CollectionKey: key,
	}
	if n.keywords {
		gen, err := newGenerator(ctx, settings)
		if err != nil {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Keywords = llm.NewService(gen, log)
	}
	var lit *literature.Cached
	if n.literature {
		finder, err := literature.NewFinder(literature.Options{
			Source:       settings.LiteratureSource,
			MetasoAPIKey: settings.MetasoAPIKey,
			ASTAAPIKey:   settings.ASTAAPIKey,
			Size:         settings.LiteratureSize,
			CacheSize:    settings.CacheSize,
			Logger:       log,
		})
		if err != nil {
			exitWithError(ExitConfigError, "creating literature finder: %v", err)
		}
		entries, err := storage.LoadLiteratureCache(config.LiteraturePath(root))
		if err != nil {
			log.Warn("ignoring unreadable literature cache", "error", err)
		}
		finder.Seed(entries)
		log.Debug("literature cache loaded", "keywords", finder.Len())
		cfg.Literature = finder
		lit = finder
	}

	w := &workspace{
		root:     root,
		settings: settings,
		log:      log,
		exp:      explorer.New(cfg),
		lit:      lit,
	}

	snap, err := storage.LoadSession(config.SessionPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if snap != nil {
		w.exp.Restore(*snap)
	}
	return w
}

// newGenerator builds the configured model backend.
func newGenerator(ctx context.Context, s config.Settings) (llm.Generator, error) {
	switch s.Provider {
	case config.ProviderClaude:
		return llm.NewClaudeCLI(s.Model), nil
	default:
		return llm.NewGemini(ctx, s.GeminiAPIKey, s.Model)
	}
}

// mustSave writes the session back to disk. Exits on error.
func (w *workspace) mustSave() {
	if err := storage.SaveSession(config.SessionPath(w.root), w.exp.Snapshot()); err != nil {
		exitWithError(ExitError, "saving session: %v", err)
	}
}

// saveLiterature persists the literature cache. Failures only cost future
// lookups, so they are logged.
func (w *workspace) saveLiterature() {
	if w.lit == nil {
		return
	}
	if err := storage.SaveLiteratureCache(config.LiteraturePath(w.root), w.lit.Entries()); err != nil {
		w.log.Warn("saving literature cache failed", "error", err)
	}
}

// close flushes the logger.
func (w *workspace) close() {
	w.log.Sync()
}

// runAction runs one explorer action, saves the session whatever the
// outcome, records it in the history and reports it. Exits non-zero when
// the action failed.
func (w *workspace) runAction(ctx context.Context, name, target string, fn func(ctx context.Context) error) {
	id := uuid.NewString()
	err := fn(explorer.WithActionID(ctx, id))

	w.mustSave()
	w.saveLiterature()

	ops := w.exp.Operations()
	resp := ActionResponse{
		ActionID:   id,
		Action:     name,
		Target:     target,
		OK:         err == nil,
		Operations: ops,
	}
	if err != nil {
		resp.Error = explorer.UserMessage(err)
	}

	entry := storage.HistoryEntry{
		Time:     time.Now().UTC(),
		ActionID: id,
		Action:   name,
		Target:   target,
		OK:       resp.OK,
		Error:    resp.Error,
		Used:     ops.Used,
	}
	if herr := storage.AppendHistory(config.HistoryPath(w.root), entry); herr != nil {
		w.log.Warn("writing history failed", "error", herr)
	}
	w.close()

	if humanOutput {
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", resp.Error)
		} else {
			fmt.Printf("%s ok (%d/%d operations used)\n", name, ops.Used, ops.Limit)
		}
	} else {
		outputJSON(resp)
	}

	if err != nil {
		os.Exit(actionExitCode(err))
	}
}

// actionExitCode maps an action failure to an exit code.
func actionExitCode(err error) int {
	switch {
	case errors.Is(err, budget.ErrExhausted):
		return ExitExhausted
	case errors.Is(err, context.Canceled):
		return ExitError
	default:
		return ExitActionError
	}
}
