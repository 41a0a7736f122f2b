package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldTenant     = "tenant"
	FieldRecordID   = "record_id"
	FieldRecordType = "record_type"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldMemberName = "member_name"
	FieldYear       = "year"
	FieldMonth      = "month"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentMembers = "members"
	ComponentLedger  = "ledger"
	ComponentReport  = "report"
	ComponentAuth    = "auth"
	ComponentAMQP    = "amqp"
	ComponentMirror  = "mirror"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpReplace  = "replace"
	OpLoad     = "load"
	OpImport   = "import"
	OpExport   = "export"
	OpRegister = "register"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
