package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/export"
	"craftexport.ai/internal/indexdb"
	"craftexport.ai/internal/logging"
	"craftexport.ai/internal/modinfo"
)

type exportOptions struct {
	dump        string
	configPath  string
	out         string
	indent      int
	coreVersion string
	iconsDir    string
	index       string
	diagnostics string
	parallel    bool
	language    string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the dataset from a content dump",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			return runExport(cmd, opts, log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.dump, "dump", "", "content dump directory (data-raw.json, locale.json, mods.yaml)")
	f.StringVar(&opts.configPath, "config", "", "exporter config YAML (optional)")
	f.StringVarP(&opts.out, "out", "o", "dataset.json", "output path; a .zst suffix compresses it")
	f.IntVar(&opts.indent, "indent", 0, "indent width for JSON output")
	f.StringVar(&opts.coreVersion, "core-version", "", "override the version read from the core module")
	f.StringVar(&opts.iconsDir, "icons-dir", "", "copy atlas icons and a manifest into this directory")
	f.StringVar(&opts.index, "index", "", "record the run in this SQLite database")
	f.StringVar(&opts.diagnostics, "diagnostics", "", "write diagnostics as .jsonl.zst")
	f.BoolVar(&opts.parallel, "parallel", false, "normalize recipes and entities concurrently")
	f.StringVar(&opts.language, "language", "", "display language tag; overrides the config (locale/<tag>.json)")
	_ = cmd.MarkFlagRequired("dump")
	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions, log logging.Logger) (err error) {
	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = opts.parallel
	}
	if opts.language != "" {
		cfg.Language = opts.language
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	dump, err := content.LoadDump(opts.dump, cfg.Language)
	if err != nil {
		return fmt.Errorf("load dump: %w", err)
	}
	log.Debug("dump loaded", "locale", dump.LocalePath, "language", cfg.Language)
	fsys := afero.NewOsFs()
	mods, err := modinfo.LoadManifest(fsys, filepath.Join(opts.dump, modinfo.ManifestFile))
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	reg := modinfo.NewRegistry(fsys, mods, cfg.PathRemaps)
	defer func() { err = errors.Join(err, reg.Close()) }()

	version := opts.coreVersion
	if version == "" {
		v, verr := reg.CoreVersion()
		if verr != nil {
			log.Warn("core version unavailable", "err", verr)
		}
		version = v
	}

	sinks := []diag.Sink{diag.LogSink{Logger: log}}
	if opts.diagnostics != "" {
		var js *diag.JSONLSink
		if js, err = diag.NewJSONLSink(opts.diagnostics); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, js.Close()) }()
		sinks = append(sinks, js)
	}
	sink := diag.Multi(sinks...)

	log.Info("building dataset", "dump", opts.dump, "version", version, "parallel", cfg.Parallel)
	d, rep, err := export.Build(export.Input{
		Content:     dump.Content,
		Locale:      dump.Locale,
		Icons:       reg,
		CoreVersion: version,
	}, cfg, sink)
	if err != nil {
		return err
	}
	if err := export.Write(opts.out, d, opts.indent); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	log.Info("dataset written", "path", opts.out, "icons", rep.Icons, "width", d.Width)

	if opts.iconsDir != "" {
		m, err := export.ExtractIcons(fsys, reg, d, opts.iconsDir, sink)
		if err != nil {
			return fmt.Errorf("extract icons: %w", err)
		}
		log.Info("icons extracted", "dir", opts.iconsDir, "count", len(m.Icons))
	}

	if opts.index != "" {
		idx, err := indexdb.OpenSQLite(opts.index)
		if err != nil {
			return err
		}
		id, rerr := idx.RecordRun(cmd.Context(), d, rep, dump.Digest)
		if cerr := idx.Close(); rerr == nil {
			rerr = cerr
		}
		if rerr != nil {
			return fmt.Errorf("index run: %w", rerr)
		}
		log.Info("run indexed", "db", opts.index, "run", id)
	}

	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
