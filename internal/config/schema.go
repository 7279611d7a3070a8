package config

// Config is the top-level YAML structure.
type Config struct {
	Version        string               `yaml:"version"`
	Server         ServerConf           `yaml:"server"`
	Map            MapConf              `yaml:"map"`
	Search         SearchConf           `yaml:"search"`
	Engine         EngineConf           `yaml:"engine"`
	Classification []ClassificationRule `yaml:"classification"`
	Logging        LoggingConf          `yaml:"logging"`
	Tracing        TracingConf          `yaml:"tracing"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr              string `yaml:"addr"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs     int    `yaml:"idle_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

// MapConf points at the GeoJSON map and names the feature properties it uses.
type MapConf struct {
	Path       string        `yaml:"path"` // relative paths resolve against the config file
	Watch      bool          `yaml:"watch"`
	Strict     bool          `yaml:"strict"`
	Properties PropertyNames `yaml:"properties"`
}

// PropertyNames maps roles to GeoJSON feature property keys.
type PropertyNames struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Oneway string `yaml:"oneway"`
}

// SearchConf holds route search defaults. Requests may override each field.
type SearchConf struct {
	MaxDepth                      int  `yaml:"max_depth"`
	MaxPaths                      int  `yaml:"max_paths"`
	AllowDirectFixtureConnections bool `yaml:"allow_direct_fixture_connections"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Workers          int `yaml:"workers"`
	QueueDepth       int `yaml:"queue_depth"`
	RequestTimeoutMs int `yaml:"request_timeout_ms"`
	MaxBatch         int `yaml:"max_batch"`
}

// ClassificationRule assigns Type to ids that start with Prefix and contain
// every string in Contains. Rules are tried in order.
type ClassificationRule struct {
	Type     string   `yaml:"type"`
	Prefix   string   `yaml:"prefix"`
	Contains []string `yaml:"contains"`
}

// LoggingConf selects the slog handler.
type LoggingConf struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// TracingConf controls the OpenTelemetry tracer provider.
type TracingConf struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"` // stdout | none
	Output      string `yaml:"output"`   // stderr | stdout, where the stdout exporter writes
	ServiceName string `yaml:"service_name"`
}
