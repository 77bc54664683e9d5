package config

const (
	HCType        = "Content-Type"
	HCacheControl = "Cache-Control"
	HAccept       = "Accept"

	CTypePDF  = "application/pdf"
	CTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	CTypeJSON = "application/json"
	CTypeText = "text/plain"
	CTypeSSE  = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	// Multipart form fields understood by the typesetting service.
	FormFieldSource = "tex_text"
	FormFieldMain   = "main"
)
