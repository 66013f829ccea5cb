package models

// Single-table key layout. Every item uses MetadataSK as its sort key.
const (
	MetadataSK = "METADATA"

	userPrefix      = "USER#"
	userEmailPrefix = "USER_EMAIL#"
	userPhonePrefix = "USER_PHONE#"
	otpPrefix       = "OTP#"
	contactPrefix   = "CONTACT#"
)

func UserPK(id string) string         { return userPrefix + id }
func UserEmailPK(email string) string { return userEmailPrefix + email }
func UserPhonePK(phone string) string { return userPhonePrefix + phone }
func OTPPK(email string) string       { return otpPrefix + email }
func ContactPK(id string) string      { return contactPrefix + id }

func UserPKPrefix() string { return userPrefix }
