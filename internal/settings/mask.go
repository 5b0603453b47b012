package settings

// MaskSecret hides all but the first and last four characters of a secret.
// Short secrets are fully masked; an empty secret stays empty.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// Masked returns a copy of s with every credential masked.
func (s Settings) Masked() Settings {
	s.AI.APIKey = MaskSecret(s.AI.APIKey)
	s.Integrations.ScopeStackAPIKey = MaskSecret(s.Integrations.ScopeStackAPIKey)
	return s
}
