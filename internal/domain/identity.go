package domain

// IdentityStrategy names how a device identity was obtained.
type IdentityStrategy string

const (
	StrategyGenerated   IdentityStrategy = "generated"
	StrategyFingerprint IdentityStrategy = "fingerprint"
)

// DeviceIdentity is the stable per-device identifier attached to every
// presence submission. A generated identity is minted once and persisted;
// a fingerprint identity is issued by the fingerprint service on each run.
type DeviceIdentity struct {
	Value    string
	Strategy IdentityStrategy
}
