package config

const (
	defaultIncomingDir   = "~/.local/share/cinelake/incoming"
	defaultBronzeDir     = "~/.local/share/cinelake/bronze"
	defaultLakeDir       = "~/.local/share/cinelake/lake"
	defaultLogDir        = "~/.local/share/cinelake/logs"
	defaultContractsFile = "~/.config/cinelake/contracts.yaml"
	defaultMappingsFile  = "~/.config/cinelake/mappings.yaml"
	defaultReadyMarker   = "_READY"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir: defaultIncomingDir,
			BronzeDir:   defaultBronzeDir,
			LakeDir:     defaultLakeDir,
			LogDir:      defaultLogDir,
		},
		Sources: Sources{
			ContractsFile: defaultContractsFile,
			MappingsFile:  defaultMappingsFile,
		},
		Ingest: Ingest{
			ReadyMarker:       defaultReadyMarker,
			QuarantineSeconds: 0,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
