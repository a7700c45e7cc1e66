package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotBuilt         = errors.New("assets not built yet, call Build() first")
	ErrEntryNotFound    = errors.New("entrypoint not found in metadata")
	ErrNoEntryPoints    = errors.New("no entry points found")
	ErrBuildFailed      = errors.New("esbuild failed with errors")
	errTemplateNotFound = errors.New("template not loaded")
)

// Build runs esbuild with the configured settings and loads metadata
func (p *Pipeline) Build() error {
	opts, err := p.buildOptions()
	if err != nil {
		return err
	}
	opts.Write = true

	log.Info().Strs("entrypoints", opts.EntryPoints).Str("mode", p.config.Mode).Msg("Building assets")

	result := api.Build(opts)
	recordBuild(context.Background(), "build", len(result.Errors) == 0)

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return ErrBuildFailed
	}

	for _, file := range result.OutputFiles {
		log.Debug().Str("file", file.Path).Msg("Built file")
	}

	// Write metafile
	metafilePath := filepath.Join(p.config.OutDir, "meta.json")
	if err := os.WriteFile(metafilePath, []byte(result.Metafile), 0600); err != nil {
		return err
	}

	return p.loadMetadata(result.Metafile)
}

// Dev rebuilds on every source change until ctx is cancelled.
func (p *Pipeline) Dev(ctx context.Context) error {
	opts, err := p.buildOptions()
	if err != nil {
		return err
	}
	opts.Write = true
	opts.Plugins = append(opts.Plugins, p.metadataPlugin())

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return ErrBuildFailed
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to watch assets: %w", err)
	}

	log.Info().Strs("entrypoints", opts.EntryPoints).Msg("Watching assets")

	<-ctx.Done()
	return nil
}

func (p *Pipeline) buildOptions() (api.BuildOptions, error) {
	var entryPoints []string
	for _, pattern := range p.config.EntryPoints {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return api.BuildOptions{}, err
		}
		entryPoints = append(entryPoints, matches...)
	}

	if len(entryPoints) == 0 {
		return api.BuildOptions{}, ErrNoEntryPoints
	}

	plugins, err := p.plugins()
	if err != nil {
		return api.BuildOptions{}, err
	}

	return api.BuildOptions{
		EntryPoints:       entryPoints,
		Bundle:            true,
		Splitting:         true,
		Outdir:            p.config.AssetsPath(),
		EntryNames:        "[name]-[hash]",
		ChunkNames:        "chunks/[name]-[hash]",
		Format:            api.FormatESModule,
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:          true,
		Plugins:           plugins,
		LogLevel:          api.LogLevelSilent,
	}, nil
}

// LoadMetafile reads the metafile written by an earlier Build.
func (p *Pipeline) LoadMetafile() error {
	data, err := os.ReadFile(filepath.Join(p.config.OutDir, "meta.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotBuilt
		}
		return err
	}
	return p.loadMetadata(string(data))
}

func (p *Pipeline) loadMetadata(metafile string) error {
	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return err
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()
	return nil
}

// LoadPage returns the files needed for the given entrypoint: the entry
// script first, then its static chunk imports, and any bundled CSS.
func (p *Pipeline) LoadPage(entryPointPath string) (Page, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return Page{}, ErrNotBuilt
	}

	entryPointPath = filepath.ToSlash(entryPointPath)

	// Find the output file for this entrypoint
	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint != entryPointPath {
			continue
		}

		page := Page{Entry: p.assetName(outputPath)}
		page.Scripts = append(page.Scripts, page.Entry)
		if info.CSSBundle != "" {
			page.Styles = append(page.Styles, p.assetName(info.CSSBundle))
		}

		visited := map[string]bool{outputPath: true}
		p.addDependencies(info, &page.Scripts, visited)
		return page, nil
	}

	return Page{}, ErrEntryNotFound
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind == "dynamic-import" || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, p.assetName(imp.Path))

		if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
			p.addDependencies(chunkInfo, scripts, visited)
		}
	}
}

// assetName strips the assets directory from a metafile output path.
func (p *Pipeline) assetName(outputPath string) string {
	prefix := filepath.ToSlash(p.config.AssetsPath()) + "/"
	return strings.TrimPrefix(filepath.ToSlash(outputPath), prefix)
}

// PageData is rendered into the page shell.
type PageData struct {
	Title     string
	Component string
	Context   any
	// ReloadPath enables the live reload client when set.
	ReloadPath string
}

// Render writes the page shell for a page served at pagePath.
func (p *Pipeline) Render(w io.Writer, pagePath string, data PageData) error {
	if p.tmpl == nil || p.tmpl.Lookup(ShellTemplate) == nil {
		return errTemplateNotFound
	}

	page, err := p.LoadPage(p.config.EntryPoints[0])
	if err != nil {
		return err
	}

	scripts := make([]string, 0, len(page.Scripts))
	for _, name := range page.Scripts {
		scripts = append(scripts, p.config.PageAssetURL(pagePath, name))
	}
	styles := make([]string, 0, len(page.Styles))
	for _, name := range page.Styles {
		styles = append(styles, p.config.PageAssetURL(pagePath, name))
	}

	return p.tmpl.ExecuteTemplate(w, ShellTemplate, map[string]any{
		"Title":      data.Title,
		"Component":  data.Component,
		"Context":    data.Context,
		"Scripts":    scripts,
		"Styles":     styles,
		"ReloadPath": data.ReloadPath,
	})
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
