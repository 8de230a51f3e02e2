package domain

// PasswordPolicy mirrors the account-wide IAM password policy attributes the
// remediator reads and merge-updates. Pointer fields distinguish "admin never
// set this" from an explicit value, which is what makes the merge preserve
// existing administrator choices. The character-class requirements are not
// modeled: the update always enforces them.
type PasswordPolicy struct {
	MinimumPasswordLength      *int32
	AllowUsersToChangePassword *bool
	PasswordReusePrevention    *int32
	MaxPasswordAge             *int32
	HardExpiry                 *bool
}
