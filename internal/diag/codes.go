package diag

// ID is a stable diagnostic identifier, e.g. "RELAY_GEN_003".
type ID string

const (
	GeneratorError             ID = "RELAY_GEN_001"
	InvalidHandlerSignature    ID = "RELAY_GEN_002"
	DuplicateHandler           ID = "RELAY_GEN_003"
	MissingRuntimeReference    ID = "RELAY_GEN_004"
	NamedHandlerConflict       ID = "RELAY_GEN_005"
	PriorityOutOfRange         ID = "RELAY_GEN_102"
	HandlerNotAccessible       ID = "RELAY_GEN_106"
	ConstructorParamConcern    ID = "RELAY_GEN_109"
	InvalidReturnType          ID = "RELAY_GEN_202"
	InvalidStreamReturnType    ID = "RELAY_GEN_203"
	InvalidNotificationReturn  ID = "RELAY_GEN_204"
	MissingRequestParameter    ID = "RELAY_GEN_205"
	InvalidRequestParamType    ID = "RELAY_GEN_206"
	MissingCancellationParam   ID = "RELAY_GEN_207"
	NotificationMissingParam   ID = "RELAY_GEN_208"
	Info                       ID = "RELAY_GEN_Info"
	Debug                      ID = "RELAY_GEN_Debug"
	NoHandlers                 ID = "RELAY_GEN_NoHandlers"
	ConfigConflict             ID = "RELAY_GEN_ConfigConflict"
	InvalidScope               ID = "RELAY_GEN_InvalidScope"
	DuplicatePipelineOrder     ID = "RELAY_GEN_DuplicatePipelineOrder"
	InvalidPriority            ID = "RELAY_GEN_InvalidPriority"
)

// Descriptor documents the closed meaning of a diagnostic ID.
type Descriptor struct {
	ID       ID
	Severity Severity
	Category string
}

// catalog is the closed set of descriptors recognized by the generator.
var catalog = map[ID]Descriptor{
	GeneratorError:            {GeneratorError, SevError, "generator"},
	InvalidHandlerSignature:   {InvalidHandlerSignature, SevError, "shape"},
	DuplicateHandler:          {DuplicateHandler, SevError, "duplicate"},
	MissingRuntimeReference:   {MissingRuntimeReference, SevError, "config"},
	NamedHandlerConflict:      {NamedHandlerConflict, SevError, "duplicate"},
	PriorityOutOfRange:        {PriorityOutOfRange, SevWarning, "shape"},
	HandlerNotAccessible:      {HandlerNotAccessible, SevError, "shape"},
	ConstructorParamConcern:   {ConstructorParamConcern, SevWarning, "shape"},
	InvalidReturnType:         {InvalidReturnType, SevError, "shape"},
	InvalidStreamReturnType:   {InvalidStreamReturnType, SevError, "shape"},
	InvalidNotificationReturn: {InvalidNotificationReturn, SevError, "shape"},
	MissingRequestParameter:   {MissingRequestParameter, SevError, "shape"},
	InvalidRequestParamType:   {InvalidRequestParamType, SevError, "shape"},
	MissingCancellationParam:  {MissingCancellationParam, SevWarning, "shape"},
	NotificationMissingParam:  {NotificationMissingParam, SevError, "shape"},
	Info:                      {Info, SevInfo, "trace"},
	Debug:                     {Debug, SevInfo, "trace"},
	NoHandlers:                {NoHandlers, SevWarning, "global"},
	ConfigConflict:            {ConfigConflict, SevError, "config"},
	InvalidScope:              {InvalidScope, SevError, "shape"},
	DuplicatePipelineOrder:    {DuplicatePipelineOrder, SevError, "duplicate"},
	InvalidPriority:           {InvalidPriority, SevError, "config"},
}

// Lookup returns the descriptor for id and whether it is a known id.
func Lookup(id ID) (Descriptor, bool) {
	d, ok := catalog[id]
	return d, ok
}

// SeverityOf returns the canonical severity for id, defaulting to SevError
// for an id outside the closed catalog (programmer error, not user error).
func SeverityOf(id ID) Severity {
	if d, ok := catalog[id]; ok {
		return d.Severity
	}
	return SevError
}
