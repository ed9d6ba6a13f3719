package privacy

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/shelterpoint/casevault/pkg/hmis"
)

// Aliaser derives stable pseudonymous substitutes for sensitive values.
// The same client always maps to the same alias within a recipient scope,
// and aliases across scopes are unlinkable without the key.
type Aliaser struct {
	key []byte
}

// NewAliaser creates an aliaser over an agency-held secret key. The key
// must stay constant for alias stability across calls.
func NewAliaser(key []byte) *Aliaser {
	return &Aliaser{key: key}
}

// derive expands (clientID, scope) into n pseudorandom bytes.
func (a *Aliaser) derive(clientID, scope string, n int) ([]byte, error) {
	r := hkdf.New(sha256.New, a.key, []byte(scope), []byte(clientID))
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("failed to derive alias: %w", err)
	}
	return out, nil
}

// AliasID returns a stable pseudonymous identifier for a client within a
// recipient scope, suitable for research and VSP data sharing.
func (a *Aliaser) AliasID(clientID, scope string) (string, error) {
	out, err := a.derive(clientID, "id:"+scope, 16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// AliasRace returns a consistent substitute race for the client that is
// never a member of the actual set, so the alias cannot leak ground truth.
func (a *Aliaser) AliasRace(clientID string, actual map[hmis.Race]struct{}) (hmis.Race, error) {
	known := hmis.KnownRaces()
	out, err := a.derive(clientID, "race", 8)
	if err != nil {
		return hmis.RaceDataNotCollected, err
	}

	idx := int(binary.BigEndian.Uint64(out) % uint64(len(known)))
	for i := 0; i < len(known); i++ {
		candidate := known[(idx+i)%len(known)]
		if _, isActual := actual[candidate]; !isActual {
			return candidate, nil
		}
	}

	// The client reported every known race; nothing can substitute.
	return hmis.RaceClientPrefersNotToAnswer, nil
}

// AliasEthnicity returns a consistent substitute ethnicity that differs
// from the actual value.
func (a *Aliaser) AliasEthnicity(clientID string, actual hmis.Ethnicity) (hmis.Ethnicity, error) {
	if !actual.IsKnown() {
		return actual, nil
	}
	// Only two substantive values exist, so the alias is the other one.
	if actual == hmis.EthnicityHispanicLatino {
		return hmis.EthnicityNonHispanicLatino, nil
	}
	return hmis.EthnicityHispanicLatino, nil
}
