package assets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Virtual modules the client bundle can import.
const (
	RoutesModule = "tutor:routes"
	EnvModule    = "tutor:env"
)

func (p *Pipeline) plugins() ([]api.Plugin, error) {
	plugins := make([]api.Plugin, 0, len(p.config.Plugins))
	for _, name := range p.config.Plugins {
		switch name {
		case "routes":
			contents, err := json.Marshal(p.manifest)
			if err != nil {
				return nil, err
			}
			plugins = append(plugins, virtualModule("routes", RoutesModule, string(contents)))
		case "env":
			contents, err := json.Marshal(envModule(p.config))
			if err != nil {
				return nil, err
			}
			plugins = append(plugins, virtualModule("env", EnvModule, string(contents)))
		default:
			return nil, fmt.Errorf("%w: %q", buildconfig.ErrUnknownPlugin, name)
		}
	}
	return plugins, nil
}

func envModule(cfg buildconfig.Config) map[string]string {
	return map[string]string{
		"mode":      cfg.Mode,
		"base":      cfg.Base,
		"assetsDir": cfg.AssetsDir,
	}
}

// virtualModule serves JSON contents for an import path that has no file on disk.
func virtualModule(name, importPath, contents string) api.Plugin {
	namespace := "tutor-" + name
	return api.Plugin{
		Name: namespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + importPath + "$"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: importPath, Namespace: namespace}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJSON}, nil
				})
		},
	}
}

// metadataPlugin refreshes the cached metafile after every rebuild.
func (p *Pipeline) metadataPlugin() api.Plugin {
	return api.Plugin{
		Name: "tutor-metadata",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				var errs []string
				for _, msg := range result.Errors {
					log.Error().Str("error", msg.Text).Msg("Rebuild error")
					errs = append(errs, msg.Text)
				}

				if len(errs) == 0 {
					if err := p.loadMetadata(result.Metafile); err != nil {
						log.Error().Err(err).Msg("Failed to load rebuilt metadata")
						errs = append(errs, err.Error())
					} else {
						log.Info().Int("outputs", len(result.OutputFiles)).Msg("Rebuilt assets")
					}
				}

				recordBuild(context.Background(), "watch", len(errs) == 0)
				if p.onRebuild != nil {
					p.onRebuild(errs)
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

func recordBuild(ctx context.Context, kind string, ok bool) {
	telemetry.GetMetrics().AssetRebuildsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("ok", ok),
	))
}
