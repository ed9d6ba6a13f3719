// Package client implements the client profile aggregate. A client's
// demographic data is never read directly by reporting or sharing code;
// it flows through the privacy engine via DemographicProfile.
package client

// Gender is the administrative gender recorded for a client.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

// Status is the client record lifecycle state.
type Status string

const (
	StatusActive         Status = "ACTIVE"
	StatusInactive       Status = "INACTIVE"
	StatusSuspended      Status = "SUSPENDED"
	StatusEnteredInError Status = "ENTERED_IN_ERROR"
)

// Name is a structured human name.
type Name struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Middle string `json:"middle,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Display returns the name as a single display string.
func (n Name) Display() string {
	if n.Given == "" {
		return n.Family
	}
	return n.Given + " " + n.Family
}

// Address is a physical or mailing address. Confidential addresses are
// flagged so external views can substitute the agency address.
type Address struct {
	Line1        string `json:"line1"`
	Line2        string `json:"line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Use          string `json:"use,omitempty"`
	Confidential bool   `json:"confidential"`
}

// ContactPoint is a phone, email, or other telecom detail.
type ContactPoint struct {
	System string `json:"system"`
	Value  string `json:"value"`
	Use    string `json:"use,omitempty"`
}

// HouseholdMember links another client into this client's household.
type HouseholdMember struct {
	MemberID     string `json:"member_id"`
	Relationship string `json:"relationship"`
}

// ContactSafetyPrefs records how the client may safely be contacted.
// For DV survivors an unsafe contact attempt is a physical risk, so
// these preferences gate all outreach.
type ContactSafetyPrefs struct {
	SafeToCall      bool   `json:"safe_to_call"`
	SafeToText      bool   `json:"safe_to_text"`
	SafeToEmail     bool   `json:"safe_to_email"`
	SafeToMail      bool   `json:"safe_to_mail"`
	PreferredMethod string `json:"preferred_method,omitempty"`
	Notes           string `json:"notes,omitempty"`
}
