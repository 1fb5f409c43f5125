package constants

const (
	ENV = "API_ENV"

	ParamID      = "id"
	ParamIDs     = "ids"
	ParamImageID = "image_id"
	ParamAuth    = "Authorization"

	ParamLimit       = "_limit"
	ParamOffset      = "_offset"
	ParamSort        = "_sort"
	ParamSearch      = "_search"
	ParamAggregation = "_agg"

	DefaultLimit  = 100
	DefaultOffset = 0

	ServerOK          = 0
	ServerError       = 1
	ServerInvalidData = 2

	UploadFormFiles = "files"

	ImageStatusUploaded  = "UPLOADED"
	ImageStatusExtracted = "EXTRACTED"
	ImageStatusFailed    = "FAILED"

	SessionStateIdle             = "IDLE"
	SessionStateFetchingBaseline = "FETCHING_BASELINE"
	SessionStateBaselineReady    = "BASELINE_READY"
	SessionStateExtractingFile   = "EXTRACTING_FILE"
	SessionStateReconciling      = "RECONCILING"
	SessionStatePersisting       = "PERSISTING"
	SessionStateSettled          = "SETTLED"
	SessionStateAborted          = "ABORTED"

	FieldTypeString = "STRING"
	FieldTypeDate   = "DATE"
	FieldTypeInt    = "INT"
	FieldTypeFloat  = "FLOAT"
)
