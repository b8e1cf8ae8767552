package httpx

// Page identifiers used in templates and navigation.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageSettings  = "settings"
	PageDatabase  = "database"
	PageError     = "error"
)

// Template paths used for loading templates from disk in dev mode and tests.
const (
	TemplatePathFromRoot = "web/templates"
	TemplatePathFromTest = "../../web/templates"
	StaticPathFromRoot   = "web/static"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLogin:     "login-content",
	PageDashboard: "dashboard-content",
	PageSettings:  "settings-content",
	PageDatabase:  "database-content",
	PageError:     "error-content",
}

// ContentTemplateFor returns the content template for the given page.
// Unknown pages fall back to the error template.
func ContentTemplateFor(page string) string {
	if name, ok := contentTemplates[page]; ok {
		return name
	}
	return "error-content"
}
