package pwhash

// ldapCryptPrefix is the envelope literal prepended by the {CRYPT} family.
const ldapCryptPrefix = "{CRYPT}"

// ldapCryptSchemes is the static table of {CRYPT} envelope schemes: each
// entry exposes an existing crypt(3)-style base scheme under an LDAP name
// by wrapping its canonical string verbatim. The slice order is the
// auto-detection order among the wrappers (they share a prefix and are
// disambiguated by the wrapped scheme's own Identify).
var ldapCryptSchemes = []struct {
	Name SchemeName
	Base SchemeName
}{
	{SchemeLDAPBcrypt, SchemeBcrypt},
	{SchemeLDAPDESCrypt, SchemeDESCrypt},
}

// registerLDAPCryptSchemes registers a lazy [PrefixWrapper] on r for every
// entry in [ldapCryptSchemes]. The base handlers are resolved from r by
// name at first use, so the wrappers may be registered before their bases.
func registerLDAPCryptSchemes(r *Registry) error {
	for _, entry := range ldapCryptSchemes {
		base := entry.Base
		w, err := NewLazyPrefixWrapper(entry.Name, ldapCryptPrefix, func() (Handler, error) {
			return r.Handler(base)
		})
		if err != nil {
			return err
		}
		if err := r.Register(w); err != nil {
			return err
		}
	}
	return nil
}
