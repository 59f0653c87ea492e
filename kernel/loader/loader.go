// Package loader holds the kernel's bundled application images. Instead
// of the original's linker-provided _num_app symbol table, images are
// embedded at compile time via go:embed from apps/, with the name-to-file
// mapping generated into apps_table.go by tools/mkapps from apps.yaml.
package loader

//go:generate go run ../../tools/mkapps -manifest ../../apps.yaml -out apps_table.go -apps-dir apps

import "embed"

//go:embed apps
var appFS embed.FS

// appTable maps an application name to its path within appFS. Generated
// by tools/mkapps; see apps_table.go.
var appTable map[string]string

// Names returns every bundled application name, in load order.
func Names() []string {
	names := make([]string, 0, len(appOrder))
	names = append(names, appOrder...)
	return names
}

// Count returns the number of bundled applications.
func Count() int { return len(appOrder) }

// NameAt returns the name of the application loaded at index i, the
// identifier task.New's caller uses as that task's initial pid.
func NameAt(i int) string { return appOrder[i] }

// Lookup returns the ELF bytes for the named application.
func Lookup(name string) ([]byte, bool) {
	path, ok := appTable[name]
	if !ok {
		return nil, false
	}
	data, err := appFS.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// BytesAt returns the ELF bytes for the application at index i.
func BytesAt(i int) []byte {
	data, ok := Lookup(appOrder[i])
	if !ok {
		panic("loader: app index out of range")
	}
	return data
}
