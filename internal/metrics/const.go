package metrics

const Namespace = "batch_release"

const (
	CacheTypeRedis  = "redis"
	CacheTypeMemory = "memory"
)

const (
	CacheOperationTypeGet    = "get"
	CacheOperationTypeSet    = "set"
	CacheOperationTypeGetDel = "get_del"
	CacheOperationTypeDelete = "delete"
	CacheOperationTypePrune  = "prune"
)

const (
	RenderModeTemplate = "template"
	RenderModeRemote   = "remote"
)

const (
	RenderOutcomeOK        = "ok"
	RenderOutcomeFailed    = "failed"
	RenderOutcomeDiscarded = "discarded"
)

const (
	PrintOutcomePrinted = "printed"
	PrintOutcomeDenied  = "denied"
	PrintOutcomeBlocked = "blocked"
)

const (
	DataSourceTracking = "tracking"
	DataSourceGeocoder = "geocoder"
	DataSourceTemplate = "template"
	DataSourceRenderer = "renderer"
)
