package frontend_domain

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error      string
	Success    string
	CSRFToken  string // CSRF token for form submissions
	Validation ValidationData
	// Remembered poster fields, prefilled into post forms.
	Name  string
	Email string
}

// ValidationData holds the limits templates put on form inputs.
type ValidationData struct {
	TitleMaxLen  int
	NameMaxLen   int
	EmailMaxLen  int
	BodyMaxLen   int
	MaxResponses int
}
