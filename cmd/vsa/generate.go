package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vsarchitect/vsa/internal/boot"
	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/config"
	"github.com/vsarchitect/vsa/internal/logger"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/settings"
	"github.com/vsarchitect/vsa/internal/storage"
)

// Generate command flags.
var (
	generateKind     string
	generateVars     []string
	generateVarsFile string
	generateAPIKey   string
)

// generateCmd renders a stored prompt and prints the cleaned model output.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a summary, call plan or scope from the stored prompts",
	Long: `Render the stored prompt for --kind with the given variables, send it to
the chat-completion service and print the cleaned output.

Variable values are parsed as JSON when valid, otherwise used as strings.

Examples:
  vsa generate --kind summary --var project='{"name":"Atlas"}' --var notes="Client wants SSO"
  vsa generate --kind scope --vars-file scope.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", string(prompt.KindSummary), "prompt kind: summary, call or scope")
	generateCmd.Flags().StringArrayVar(&generateVars, "var", nil, "template variable as name=value (repeatable)")
	generateCmd.Flags().StringVar(&generateVarsFile, "vars-file", "", "JSON object file with template variables")
	generateCmd.Flags().StringVar(&generateAPIKey, "api-key", "", "API key to use instead of the stored one, not persisted (or set "+envAPIKey+")")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	kind, err := prompt.ParseKind(generateKind)
	if err != nil {
		return err
	}
	vars, err := loadVarsFile(generateVarsFile)
	if err != nil {
		return err
	}
	inline, err := parseVars(generateVars)
	if err != nil {
		return err
	}
	for name, value := range inline {
		vars[name] = value
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rc, err := boot.ProvideRuntimeConfig(cfg)
	if err != nil {
		return err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	lib, err := providePromptLibrary(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeStore, err := openStorage(ctx, log, cfg, rc.StorageDriver)
	if err != nil {
		return err
	}
	defer closeStore()

	apiKey := resolveAPIKey(generateAPIKey)
	if apiKey != "" {
		if store, err = overlayStore(ctx, store, rc.SettingsKey); err != nil {
			return err
		}
	}

	gen := provideCompletionService(log, provideGateway(log, cfg, rc), lib, cfg)
	svc := settings.NewService(log, store, gen, lib, rc.SettingsKey)
	svc.Load(ctx)
	if apiKey != "" {
		if _, err := svc.Update(ctx, settings.UpdateRequest{AI: &settings.AIUpdate{APIKey: &apiKey}}); err != nil {
			return err
		}
	}

	if template, ok := svc.Get().AI.Prompts.Template(kind); ok {
		for _, missing := range missingVars(template, vars) {
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("warning: {%s} has no value and will be sent as-is", missing))
		}
	}

	content, err := svc.GenerateContent(ctx, kind, vars)
	if err != nil {
		if failure, ok := completion.AsFailure(err); ok {
			log.Debug("generation failed", slog.Any("details", failure.Details))
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}

// parseVars turns name=value pairs into template variables.
func parseVars(pairs []string) (prompt.Variables, error) {
	vars := prompt.Variables{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", pair)
		}
		vars[name] = prompt.ParseValue(value)
	}
	return vars, nil
}

func loadVarsFile(path string) (prompt.Variables, error) {
	vars := prompt.Variables{}
	if path == "" {
		return vars, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parse vars file %s: %w", path, err)
	}
	if vars == nil {
		vars = prompt.Variables{}
	}
	return vars, nil
}

func missingVars(template string, vars prompt.Variables) []string {
	var missing []string
	for _, name := range prompt.Placeholders(template) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// overlayStore copies the persisted snapshot into memory so one-off
// overrides never reach durable storage.
func overlayStore(ctx context.Context, base storage.Provider, key string) (storage.Provider, error) {
	overlay := storage.NewMemoryProvider()
	data, err := base.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return overlay, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := overlay.Put(ctx, key, data); err != nil {
		return nil, err
	}
	return overlay, nil
}
