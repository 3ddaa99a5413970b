package scrapsae

// LinkPriority represents traversal priority (higher = sooner).
type LinkPriority int

// Link priority levels. Child-category links drive the primary walk;
// related/accessory links harvested by deep discovery are low priority
// and never block the primary path.
const (
	PriorityIgnore        LinkPriority = 0
	PriorityDeepDiscovery LinkPriority = 10
	PriorityPagination    LinkPriority = 50
	PriorityChild         LinkPriority = 100
)

// Link sources.
const (
	LinkSourceNavigation = "navigation"
	LinkSourcePagination = "pagination"
	LinkSourceRelated    = "related"
	LinkSourceBreadcrumb = "breadcrumb"
	LinkSourceSeed       = "seed"
)

// DiscoveredLink is a URL found during traversal, with priority metadata.
type DiscoveredLink struct {
	URL      string
	Priority LinkPriority
	Text     string
	Source   string

	// Depth is the traversal depth the link was discovered at.
	Depth int
}
