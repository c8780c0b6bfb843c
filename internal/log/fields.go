package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent        = "component"
	FieldRequestID        = "request_id"
	FieldMethod           = "method"
	FieldURL              = "url"
	FieldStatusCode       = "status_code"
	FieldDuration         = "duration_ms"
	FieldSuccess          = "success"
	FieldError            = "error"
	FieldErrorType        = "error_type"
	FieldOperation        = "operation"
	FieldExpenseID        = "expense_id"
	FieldExpenseDesc      = "expense_description"
	FieldAmount           = "amount"
	FieldCategory         = "category"
	FieldCount            = "count"
	FieldVersion          = "version"
	FieldNotificationID   = "notification_id"
	FieldNotificationType = "notification_type"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentGateway = "gateway"
	ComponentStore   = "store"
	ComponentNotify  = "notify"
	ComponentViews   = "views"
	ComponentCache   = "cache"
	ComponentEvents  = "events"
	ComponentSheets  = "sheets"
	ComponentCharts  = "charts"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpInsights = "insights"
	OpSearch   = "search"
	OpStats    = "stats"
	OpHealth   = "health"
	OpLoad     = "load"
	OpShow     = "show"
	OpDismiss  = "dismiss"
	OpClear    = "clear"
	OpExport   = "export"
	OpRender   = "render"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeConnection    = "connection_error"
	ErrorTypeClient        = "client_error"
	ErrorTypeServer        = "server_error"
	ErrorTypeEnvelope      = "envelope_error"
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields. A nil id is omitted.
func (f LogFields) WithExpense(id *int64, desc string, amount decimal.Decimal, category string) LogFields {
	if id != nil {
		f[FieldExpenseID] = *id
	}
	f[FieldExpenseDesc] = desc
	f[FieldAmount] = amount.String()
	f[FieldCategory] = category
	return f
}

// WithHTTPRequest adds outbound request fields
func (f LogFields) WithHTTPRequest(method, url string) LogFields {
	f[FieldMethod] = method
	f[FieldURL] = url
	return f
}

// WithHTTPResponse adds outbound response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
