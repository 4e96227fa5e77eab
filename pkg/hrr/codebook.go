package hrr

// Role names used when composing a trace into a single vector.
const (
	RolePurpose  = "purpose"
	RoleContent  = "content"
	RoleOrigin   = "origin"
	RolePath     = "path"
	RoleSalience = "salience"
)

var roleNames = []string{RolePurpose, RoleContent, RoleOrigin, RolePath, RoleSalience}

// Hint fields with dedicated role vectors. Other fields bind against the
// generic content role.
var fieldRoleNames = []string{"content", "summary", "key_events", "event", "description"}

// Purposes known up front. Holograms use these to categorize traces;
// unknown purposes still encode via a seeded fallback.
var knownPurposes = []string{
	"observation", "discovery", "learning", "research",
	"decision", "session_context", "thought", "memory",
}

// Codebook maps symbolic role and purpose names to deterministic seed
// vectors. Two codebooks built with the same dimension are identical, so
// independent agents decode each other's vectors without exchanging state.
//
// A Codebook is immutable after construction except via AddPurpose.
type Codebook struct {
	dim      int
	roles    map[string]Vector
	fields   map[string]Vector
	purposes map[string]Vector
}

// NewCodebook builds a codebook of seed vectors for the given dimension.
func NewCodebook(dim int) *Codebook {
	cb := &Codebook{
		dim:      dim,
		roles:    make(map[string]Vector, len(roleNames)),
		fields:   make(map[string]Vector, len(fieldRoleNames)),
		purposes: make(map[string]Vector, len(knownPurposes)),
	}
	for _, name := range roleNames {
		cb.roles[name] = Seeded("role_"+name, dim)
	}
	for _, name := range fieldRoleNames {
		cb.fields[name] = Seeded("field_"+name, dim)
	}
	for _, name := range knownPurposes {
		cb.purposes[name] = Seeded("purpose_"+name, dim)
	}
	return cb
}

// Dim returns the vector dimension the codebook was built for.
func (cb *Codebook) Dim() int {
	return cb.dim
}

// Role returns the seed vector for a structural role name.
func (cb *Codebook) Role(name string) (Vector, bool) {
	v, ok := cb.roles[name]
	return v, ok
}

// FieldRole returns the dedicated role vector for a hint field, or the
// generic content role when the field has none.
func (cb *Codebook) FieldRole(field string) Vector {
	if v, ok := cb.fields[field]; ok {
		return v
	}
	return cb.roles[RoleContent]
}

// Purpose returns the seed vector for a purpose name. Unknown purposes fall
// back to a seeded vector derived from the name itself, so every purpose is
// encodable even before AddPurpose registers it for decoding.
func (cb *Codebook) Purpose(name string) Vector {
	if v, ok := cb.purposes[name]; ok {
		return v
	}
	return Seeded("purpose_"+name, cb.dim)
}

// AddPurpose registers a purpose so DecodePurpose can recover it. Adding an
// already-known purpose is a no-op; the seed is deterministic either way.
func (cb *Codebook) AddPurpose(name string) {
	if _, ok := cb.purposes[name]; !ok {
		cb.purposes[name] = Seeded("purpose_"+name, cb.dim)
	}
}

// Purposes returns the purpose table for decoding.
func (cb *Codebook) Purposes() map[string]Vector {
	return cb.purposes
}
