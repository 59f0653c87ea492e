// Command mkapps reads an apps.yaml manifest and emits the generated
// apps_table.go that kernel/loader embeds, replacing the linker-synthesized
// application table the original kernel relied on.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Manifest mirrors apps.yaml's top-level shape.
type Manifest struct {
	Apps []AppEntry `yaml:"apps"`
}

// AppEntry names one bundled application and the path to its built ELF
// image, relative to kernel/loader, the package whose embedded files the
// generated table indexes.
type AppEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

func loadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(m.Apps) == 0 {
		return Manifest{}, fmt.Errorf("%s: no apps listed", path)
	}
	return m, nil
}

var tableTemplate = template.Must(template.New("table").Parse(`// Code generated by tools/mkapps from {{.ManifestPath}}; DO NOT EDIT.

package loader

var appOrder = []string{
{{- range .Apps}}
	{{printf "%q" .Name}},
{{- end}}
}

func init() {
	appTable = map[string]string{
{{- range .Apps}}
		{{printf "%q" .Name}}: {{printf "%q" .Path}},
{{- end}}
	}
}
`))

func render(manifestPath string, m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, struct {
		ManifestPath string
		Apps         []AppEntry
	}{ManifestPath: manifestPath, Apps: m.Apps})
	return buf.Bytes(), err
}

func main() {
	manifestPath := flag.String("manifest", "apps.yaml", "path to the app manifest")
	outPath := flag.String("out", "apps_table.go", "generated Go source path")
	appsDir := flag.String("apps-dir", "apps", "directory the generated table's paths are relative to")
	flag.Parse()

	_ = appsDir // not used; kernel/loader.Lookup reports a missing image at call time

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkapps:", err)
		os.Exit(1)
	}

	src, err := render(*manifestPath, m)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkapps: render:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, src, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "mkapps: write:", err)
		os.Exit(1)
	}
}
