package utils

import "strings"

// Role is the closed classification of the free-form role strings stored on
// user records. Everything outside models consumes this enum, never the raw
// string.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleEngineer
	RoleTechnicalManager
	RoleProjectManager
)

// Role string synonyms as they appear in stored user records. The synonym
// sets are part of the contract: "Automation Manager" is a technical manager
// everywhere in the system.
var (
	technicalManagerSynonyms = []string{"TM", "Technical Manager", "Tech Manager", "Automation Manager"}
	projectManagerSynonyms   = []string{"PM", "Project Manager", "Project_Manager"}
)

// ClassifyRole maps a stored role string to its Role.
func ClassifyRole(raw string) Role {
	role := strings.TrimSpace(raw)
	switch {
	case role == "Admin":
		return RoleAdmin
	case role == "Engineer":
		return RoleEngineer
	case containsFold(technicalManagerSynonyms, role):
		return RoleTechnicalManager
	case containsFold(projectManagerSynonyms, role):
		return RoleProjectManager
	default:
		return RoleUnknown
	}
}

// IsManager reports whether the role sees all reports.
func (r Role) IsManager() bool {
	return r == RoleTechnicalManager || r == RoleProjectManager
}

// ApprovalStage returns the workflow stage owned by the role, or 0 when the
// role approves nothing.
func (r Role) ApprovalStage() int {
	switch r {
	case RoleTechnicalManager:
		return 1
	case RoleProjectManager:
		return 2
	default:
		return 0
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleEngineer:
		return "Engineer"
	case RoleTechnicalManager:
		return "Technical Manager"
	case RoleProjectManager:
		return "Project Manager"
	default:
		return "Unknown"
	}
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
