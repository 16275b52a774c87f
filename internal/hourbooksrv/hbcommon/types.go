package hbcommon

const (
	ServerVersion = "0.1.0"
	// ApiVersion is checked by clients with a semver constraint.
	ApiVersion = "0.1.0"
)

type TokenVersion string

const TokenVersionV0_1 TokenVersion = "0.1"
