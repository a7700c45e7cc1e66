package assets

import (
	"embed"
	"html/template"
	"maps"
	"sync"

	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ShellTemplate is the name of the page shell in the default templates.
const ShellTemplate = "shell"

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Page lists the files a page needs, as asset names relative to the assets dir.
type Page struct {
	Entry   string
	Scripts []string
	Styles  []string
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   buildconfig.Config
	manifest []routes.ManifestEntry
	metadata *BuildMetadata
	tmpl     *template.Template
	mu       sync.RWMutex

	onRebuild func(errs []string)
}

// New creates an asset pipeline using the embedded page shell.
func New(config buildconfig.Config, table routes.Table) (*Pipeline, error) {
	tmpl, err := template.New("assets").Funcs(defaultFuncs(config)).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:   config,
		manifest: table.Manifest(),
		tmpl:     tmpl,
	}, nil
}

// NewWithTemplateDir creates a pipeline that loads all templates from a directory
// with custom functions merged over the defaults.
func NewWithTemplateDir(config buildconfig.Config, table routes.Table, templateDir string, customFuncs template.FuncMap) (*Pipeline, error) {
	funcs := defaultFuncs(config)

	// Merge custom functions
	maps.Copy(funcs, customFuncs)

	tmpl, err := template.New(templateDir).Funcs(funcs).ParseGlob(templateDir + "/*.html")
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:   config,
		manifest: table.Manifest(),
		tmpl:     tmpl,
	}, nil
}

// OnRebuild registers fn to run after every watch-mode rebuild with the
// build errors, if any. Call it before Dev.
func (p *Pipeline) OnRebuild(fn func(errs []string)) {
	p.onRebuild = fn
}

// Config returns the build configuration the pipeline was created with.
func (p *Pipeline) Config() buildconfig.Config {
	return p.config
}

func defaultFuncs(config buildconfig.Config) template.FuncMap {
	return template.FuncMap{
		"mode": func() string { return config.Mode },
	}
}
