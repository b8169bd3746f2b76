package version

// Set with -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit"`
	BuildTime string `json:"built"`
}

func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

func (i Info) String() string {
	return i.Version + " (commit: " + i.GitCommit + ", built: " + i.BuildTime + ")"
}
