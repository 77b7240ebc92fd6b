package models

// EntityKind names a record shape coming back from the catalog store
type EntityKind string

const (
	KindWorkflow  EntityKind = "workflow"
	KindDomain    EntityKind = "domain"
	KindSubdomain EntityKind = "subdomain"

	// KindWorkflowWithRelations is a workflow that may embed its subdomain and domain
	KindWorkflowWithRelations EntityKind = "workflow_with_relations"
)

// RequiredFields lists the keys a record must carry, per kind
var RequiredFields = map[EntityKind][]string{
	KindWorkflow:  {"id", "name"},
	KindDomain:    {"id", "name", "description"},
	KindSubdomain: {"id", "name", "domain_id"},
}

// WorkflowFields is the full column list of the workflows table
var WorkflowFields = []string{
	"id", "name", "description", "subdomain_id", "complexity", "agentic_potential",
	"autonomy_level", "implementation_wave", "status", "airline_type", "ai_enablers",
	"systems_involved", "business_context", "expected_roi", "dependencies",
	"created_at", "updated_at",
}

// DomainFields is the full column list of the domains table
var DomainFields = []string{"id", "name", "description", "icon_url", "created_at", "updated_at"}

// SubdomainFields is the full column list of the subdomains table
var SubdomainFields = []string{"id", "name", "description", "domain_id", "created_at", "updated_at"}

// ExpectedFields returns the column list for kind, or nil when unknown
func ExpectedFields(kind EntityKind) []string {
	switch kind {
	case KindWorkflow, KindWorkflowWithRelations:
		return WorkflowFields
	case KindDomain:
		return DomainFields
	case KindSubdomain:
		return SubdomainFields
	default:
		return nil
	}
}

// Workflow is a fully populated workflow record
type Workflow struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	SubdomainID        *string  `json:"subdomain_id"`
	Complexity         int      `json:"complexity"`
	AgenticPotential   int      `json:"agentic_potential"`
	AutonomyLevel      int      `json:"autonomy_level"`
	ImplementationWave int      `json:"implementation_wave"`
	Status             string   `json:"status"`
	AirlineType        []string `json:"airline_type"`
	AIEnablers         []string `json:"ai_enablers"`
	SystemsInvolved    []string `json:"systems_involved"`
	BusinessContext    string   `json:"business_context"`
	ExpectedROI        *string  `json:"expected_roi"`
	Dependencies       []string `json:"dependencies"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// SchemaComparison is the set difference between expected and actual record keys
type SchemaComparison struct {
	IsMatch       bool     `json:"isMatch"`
	MissingFields []string `json:"missingFields"`
	ExtraFields   []string `json:"extraFields"`
}
