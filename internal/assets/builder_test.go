package assets

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

const testEntry = `import routes from "tutor:routes";
import env from "tutor:env";
import "./style.css";

document.body.dataset.routes = String(routes.length) + env.mode + routes[3].component;
`

func setupProject(t *testing.T, mode string) buildconfig.Config {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.MkdirAll("ui", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("ui", "main.ts"), []byte(testEntry), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join("ui", "style.css"), []byte("body { margin: 0 }\n"), 0o600))

	cfg, err := buildconfig.Defaults(mode)
	require.NoError(t, err)
	return cfg
}

func TestPipeline_Build(t *testing.T) {
	cfg := setupProject(t, buildconfig.Production)

	p, err := New(cfg, routes.Default())
	require.NoError(t, err)

	_, err = p.LoadPage("ui/main.ts")
	require.ErrorIs(t, err, ErrNotBuilt)

	require.NoError(t, p.Build())
	require.FileExists(t, filepath.Join("dist", "meta.json"))

	page, err := p.LoadPage("ui/main.ts")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(page.Entry, "main-"), page.Entry)
	require.True(t, strings.HasSuffix(page.Entry, ".js"), page.Entry)
	require.Equal(t, page.Entry, page.Scripts[0])
	require.Len(t, page.Styles, 1)
	require.True(t, strings.HasSuffix(page.Styles[0], ".css"))

	bundle, err := os.ReadFile(filepath.Join("dist", "assets", page.Entry))
	require.NoError(t, err)
	require.Contains(t, string(bundle), routes.LessonList)
	require.Contains(t, string(bundle), buildconfig.Production)

	_, err = p.LoadPage("ui/other.ts")
	require.ErrorIs(t, err, ErrEntryNotFound)

	t.Run("reload metafile", func(t *testing.T) {
		fresh, err := New(cfg, routes.Default())
		require.NoError(t, err)
		require.NoError(t, fresh.LoadMetafile())

		again, err := fresh.LoadPage("ui/main.ts")
		require.NoError(t, err)
		require.Equal(t, page, again)
	})
}

func TestPipeline_LoadMetafileMissing(t *testing.T) {
	cfg := setupProject(t, buildconfig.Production)

	p, err := New(cfg, routes.Default())
	require.NoError(t, err)
	require.ErrorIs(t, p.LoadMetafile(), ErrNotBuilt)
}

func TestPipeline_Render(t *testing.T) {
	cfg := setupProject(t, buildconfig.Development)

	p, err := New(cfg, routes.Default())
	require.NoError(t, err)
	require.NoError(t, p.Build())

	var buf bytes.Buffer
	err = p.Render(&buf, "/math/42/lessons", PageData{
		Title:     "Lessons",
		Component: routes.LessonList,
		Context:   map[string]any{"props": map[string]any{"studentId": 42}},
	})
	require.NoError(t, err)

	html := buf.String()
	require.Contains(t, html, "<title>Lessons</title>")
	require.Contains(t, html, `data-component="LessonList"`)
	require.Contains(t, html, `data-mode="development"`)
	require.Contains(t, html, `src="../../assets/main-`)
	require.Contains(t, html, `href="../../assets/main-`)
	require.Contains(t, html, `"studentId":42`)
	require.NotContains(t, html, "WebSocket")

	buf.Reset()
	require.NoError(t, p.Render(&buf, "/", PageData{Title: "Home", Component: routes.Home, ReloadPath: "/__tutor/reload"}))
	require.Contains(t, buf.String(), "new WebSocket(")
	require.Contains(t, buf.String(), "__tutor")
	require.Contains(t, buf.String(), `src="./assets/main-`)
}

func TestPipeline_BuildErrors(t *testing.T) {
	t.Run("no entry points", func(t *testing.T) {
		cfg := setupProject(t, buildconfig.Production)
		cfg.EntryPoints = []string{"ui/missing/*.ts"}

		p, err := New(cfg, routes.Default())
		require.NoError(t, err)
		require.ErrorIs(t, p.Build(), ErrNoEntryPoints)
	})

	t.Run("syntax error", func(t *testing.T) {
		cfg := setupProject(t, buildconfig.Production)
		require.NoError(t, os.WriteFile(filepath.Join("ui", "main.ts"), []byte("const = ;"), 0o600))

		p, err := New(cfg, routes.Default())
		require.NoError(t, err)
		require.ErrorIs(t, p.Build(), ErrBuildFailed)
	})

	t.Run("unknown plugin", func(t *testing.T) {
		cfg := setupProject(t, buildconfig.Production)
		cfg.Plugins = []string{"vue"}

		p, err := New(cfg, routes.Default())
		require.NoError(t, err)
		require.ErrorIs(t, p.Build(), buildconfig.ErrUnknownPlugin)
	})
}

func TestPipeline_Dev(t *testing.T) {
	cfg := setupProject(t, buildconfig.Development)

	p, err := New(cfg, routes.Default())
	require.NoError(t, err)

	rebuilt := make(chan []string, 1)
	p.OnRebuild(func(errs []string) {
		select {
		case rebuilt <- errs:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Dev(ctx) }()

	require.Eventually(t, func() bool {
		_, err := p.LoadPage("ui/main.ts")
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	select {
	case errs := <-rebuilt:
		require.Empty(t, errs)
	case <-time.After(10 * time.Second):
		t.Fatal("no rebuild notification")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestPipeline_CustomTemplates(t *testing.T) {
	cfg := setupProject(t, buildconfig.Production)

	dir := filepath.Join(t.TempDir(), "templates")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	shell := `{{define "shell"}}<main data-mode="{{mode}}" data-brand="{{brand}}">{{.Component}}{{range .Scripts}} {{.}}{{end}}</main>{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shell.html"), []byte(shell), 0o600))

	p, err := NewWithTemplateDir(cfg, routes.Default(), dir, template.FuncMap{
		"brand": func() string { return "tutor" },
	})
	require.NoError(t, err)
	require.NoError(t, p.Build())

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, "/math", PageData{Component: routes.CategoryPage}))
	require.Contains(t, buf.String(), `data-mode="production"`)
	require.Contains(t, buf.String(), `data-brand="tutor"`)
	require.Contains(t, buf.String(), "CategoryPage /assets/main-")
}
