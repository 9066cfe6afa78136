// Package internal contains the implementation packages behind prerender.
//
// # Package Organization
//
// The rendering core, leaves first:
//
//   - errors: typed PrerenderError with codes, context and wrapping
//   - logging: structured logger over slog with component scoping
//   - props: property values, schemas and attribute-to-property conversion
//   - dom: element tree, markup parser adapter and serializer
//   - stylesheet: CSS parser adapter and host-selector rewriting
//   - tmpl: template results with marker interpolation
//   - marker: per-render marker codec for template value slots
//   - slot: slot projection of light children into rendered output
//   - scoping: per-tag class naming and instance numbering
//   - component: descriptors, instances and the descriptor registry
//   - session: per-session style emission and instance counters
//   - expand: the tree-expansion engine
//
// Supporting packages used by the CLI:
//
//   - config: viper-backed configuration with validation
//   - i18n: message bundles and locale lookup for templates
//   - manifest: YAML component manifests compiled into descriptors
//   - metrics: Prometheus collector implementing the engine observer
//   - watcher: debounced fsnotify watcher for re-rendering
//   - version: build information
//
// The public entry points live in pkg/ssr.
package internal
