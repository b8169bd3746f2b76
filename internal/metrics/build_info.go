package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	commonversion "github.com/prometheus/common/version"

	"batch-release/internal/version"
)

// RegisterBuildInfo exposes batch_release_build_info on the default registry.
func RegisterBuildInfo(info version.Info) error {
	commonversion.Version = info.Version
	commonversion.Revision = info.GitCommit
	commonversion.BuildDate = info.BuildTime

	err := prometheus.Register(versioncollector.NewCollector(Namespace))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
