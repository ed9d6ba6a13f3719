// Package privacy implements the context-sensitive redaction engine:
// access contexts, the purpose/access-level policy matrix, demographic
// redaction strategies, stable aliasing, and VAWA reporting suppression.
package privacy

// AccessLevel is the ordered PII disclosure level granted to a principal
// for a data category. Higher levels include all lower ones.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessInternal
	AccessRestricted
	AccessConfidential
)

func (l AccessLevel) String() string {
	switch l {
	case AccessPublic:
		return "PUBLIC"
	case AccessInternal:
		return "INTERNAL"
	case AccessRestricted:
		return "RESTRICTED"
	case AccessConfidential:
		return "CONFIDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// Allows reports whether a grant at this level satisfies a request at the
// given level.
func (l AccessLevel) Allows(requested AccessLevel) bool {
	return l >= requested
}

// Category classifies PII by re-identification risk.
type Category string

const (
	CategoryDirectIdentifier Category = "DIRECT_IDENTIFIER"
	CategoryQuasiIdentifier  Category = "QUASI_IDENTIFIER"
	CategorySensitive        Category = "SENSITIVE"
	CategoryFinancial        Category = "FINANCIAL"
	CategoryLocation         Category = "LOCATION"
)

// Purpose is the declared reason for a data access. Every redaction
// decision is computed per purpose.
type Purpose string

const (
	PurposeDirectService  Purpose = "DIRECT_SERVICE"
	PurposeCaseManagement Purpose = "CASE_MANAGEMENT"
	PurposeReporting      Purpose = "REPORTING"
	PurposeResearch       Purpose = "RESEARCH"
	PurposeCourtOrdered   Purpose = "COURT_ORDERED"
	PurposeAudit          Purpose = "AUDIT"
	PurposeEmergency      Purpose = "EMERGENCY"
	PurposeVSPSharing     Purpose = "VSP_SHARING"
	PurposeHMISExport     Purpose = "HMIS_EXPORT"
)

// Purposes returns every defined purpose, for totality checks.
func Purposes() []Purpose {
	return []Purpose{
		PurposeDirectService,
		PurposeCaseManagement,
		PurposeReporting,
		PurposeResearch,
		PurposeCourtOrdered,
		PurposeAudit,
		PurposeEmergency,
		PurposeVSPSharing,
		PurposeHMISExport,
	}
}

// Role is a coarse staff role carried on the access context.
type Role string

const (
	RoleCaseWorker    Role = "CASE_WORKER"
	RoleClinician     Role = "CLINICIAN"
	RoleLegalAdvocate Role = "LEGAL_ADVOCATE"
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleAuditor       Role = "AUDITOR"
	RoleResearcher    Role = "RESEARCHER"
	RoleExternal      Role = "EXTERNAL_PARTNER"
)

// AccessContext captures who is asking for data and under what authority.
// It is immutable after construction; all redaction decisions are pure
// functions of a context, a purpose, and the data itself.
type AccessContext struct {
	principalID        string
	roles              []Role
	grants             map[Category]AccessLevel
	assignedClients    map[string]struct{}
	legalAuthorization bool
	anonymous          bool
}

// AccessContextOption configures an AccessContext.
type AccessContextOption func(*AccessContext)

// WithRoles sets the principal's roles.
func WithRoles(roles ...Role) AccessContextOption {
	return func(c *AccessContext) { c.roles = roles }
}

// WithGrant records an access-level grant for a category. The highest
// grant wins when called repeatedly for the same category.
func WithGrant(category Category, level AccessLevel) AccessContextOption {
	return func(c *AccessContext) {
		if existing, ok := c.grants[category]; !ok || level > existing {
			c.grants[category] = level
		}
	}
}

// WithAssignedClients marks the principal as the assigned case worker for
// the given client ids.
func WithAssignedClients(clientIDs ...string) AccessContextOption {
	return func(c *AccessContext) {
		for _, id := range clientIDs {
			c.assignedClients[id] = struct{}{}
		}
	}
}

// WithLegalAuthorization marks the context as carrying a court order or
// equivalent legal authority.
func WithLegalAuthorization() AccessContextOption {
	return func(c *AccessContext) { c.legalAuthorization = true }
}

// NewAccessContext builds a context for the given principal.
func NewAccessContext(principalID string, opts ...AccessContextOption) *AccessContext {
	c := &AccessContext{
		principalID:     principalID,
		grants:          make(map[Category]AccessLevel),
		assignedClients: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnonymousContext returns a context with no identity and no grants.
func AnonymousContext() *AccessContext {
	c := NewAccessContext("")
	c.anonymous = true
	return c
}

// PrincipalID returns the requesting principal's identifier.
func (c *AccessContext) PrincipalID() string { return c.principalID }

// HasAccess reports whether the context holds a grant for the category at
// or above the requested level. Absent grants deny.
func (c *AccessContext) HasAccess(category Category, level AccessLevel) bool {
	if c.anonymous {
		return false
	}
	granted, ok := c.grants[category]
	return ok && granted.Allows(level)
}

// IsAssignedCaseWorker reports whether the principal is the assigned case
// worker for the client.
func (c *AccessContext) IsAssignedCaseWorker(clientID string) bool {
	_, ok := c.assignedClients[clientID]
	return ok
}

// HasLegalAuthorization reports whether a court order backs this access.
func (c *AccessContext) HasLegalAuthorization() bool { return c.legalAuthorization }

// IsAnonymous reports whether the context carries no identity.
func (c *AccessContext) IsAnonymous() bool { return c.anonymous }

// HasRole reports whether the principal holds the role.
func (c *AccessContext) HasRole(role Role) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsExternalPartner reports whether the principal is outside the agency.
func (c *AccessContext) IsExternalPartner() bool {
	return c.HasRole(RoleExternal)
}
