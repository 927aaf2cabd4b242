package config

// inject version by '-X' flag
// go build -ldflags "-X github.com/hrbox-pull/hrbox-pull/config.Version=${VERSION}"
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

const (
	AppName = "hrbox-pull"
)
