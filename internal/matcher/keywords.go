package matcher

import "github.com/mcp-scout/mcp-scout/internal/resource"

// capabilityKeywords maps literal trigger words onto the capability category
// they imply. Both the keyword strategy (token intersection) and the
// capability-need strategy (substring scan) read this table.
var capabilityKeywords = map[string]resource.CapabilityCategory{
	"database":      resource.CategoryDatabase,
	"sql":           resource.CategoryDatabase,
	"query":         resource.CategoryDatabase,
	"postgres":      resource.CategoryDatabase,
	"sqlite":        resource.CategoryDatabase,
	"file":          resource.CategoryFileSystem,
	"folder":        resource.CategoryFileSystem,
	"directory":     resource.CategoryFileSystem,
	"filesystem":    resource.CategoryFileSystem,
	"api":           resource.CategoryAPI,
	"rest":          resource.CategoryAPI,
	"endpoint":      resource.CategoryAPI,
	"webhook":       resource.CategoryAPI,
	"web":           resource.CategoryWeb,
	"browser":       resource.CategoryWeb,
	"scrape":        resource.CategoryWeb,
	"website":       resource.CategoryWeb,
	"crawl":         resource.CategoryWeb,
	"ai":            resource.CategoryAI,
	"llm":           resource.CategoryAI,
	"model":         resource.CategoryAI,
	"embedding":     resource.CategoryAI,
	"docs":          resource.CategoryDocumentation,
	"documentation": resource.CategoryDocumentation,
	"reference":     resource.CategoryDocumentation,
	"prompt":        resource.CategoryPrompts,
	"template":      resource.CategoryPrompts,
}

// knownLibraries are the well-known library and framework names the
// library-reference strategy scans for. Matching is literal substring
// containment against lowercased text.
var knownLibraries = []string{
	"react",
	"vue",
	"angular",
	"svelte",
	"next.js",
	"nextjs",
	"express",
	"fastapi",
	"django",
	"flask",
	"rails",
	"spring",
	"laravel",
	"pytorch",
	"tensorflow",
	"pandas",
	"numpy",
	"langchain",
	"kubernetes",
	"docker",
	"terraform",
	"postgresql",
	"mongodb",
	"redis",
	"graphql",
	"tailwind",
	"swiftui",
}
