package jwt

// KeyRegistry maps key identifiers, the `kid` header, to key material.
// The registry is not safe for concurrent writes: populate it once
// and pass it to New with WithKeyRegistry, the Codec keeps its own copy.
type KeyRegistry struct {
	keys map[string]*Key
}

// NewKeyRegistry returns an empty registry
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{keys: map[string]*Key{}}
}

// Register adds or replaces the key for kid.
// The key is not validated until it is used.
func (r *KeyRegistry) Register(kid string, key *Key) *KeyRegistry {
	if r.keys == nil {
		r.keys = map[string]*Key{}
	}
	r.keys[kid] = key
	return r
}

// Get returns the key registered for kid
func (r *KeyRegistry) Get(kid string) (*Key, bool) {
	if r == nil {
		return nil, false
	}
	k, ok := r.keys[kid]
	return k, ok && k != nil
}

// Len returns the number of registered keys
func (r *KeyRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns a copy of the registry
func (r *KeyRegistry) Clone() *KeyRegistry {
	c := NewKeyRegistry()
	if r != nil {
		for kid, key := range r.keys {
			c.keys[kid] = key
		}
	}
	return c
}

// Resolve returns defaultKey when hasKid is false,
// otherwise the key registered for kid, or UnknownKeyId error.
func (r *KeyRegistry) Resolve(kid string, hasKid bool, defaultKey *Key) (*Key, error) {
	if !hasKid {
		return defaultKey, nil
	}
	if key, ok := r.Get(kid); ok {
		return key, nil
	}
	e := newError(KindUnknownKeyID, "invalid token: unknown key ID")
	e.Claim = "kid"
	return nil, e
}
