package cache

// Field selects one of the fixed fields stored per cached resource.
type Field int

const (
	// FieldETag is the entity tag validator from the last response.
	FieldETag Field = iota

	// FieldLastModified is the last-modified validator from the last response.
	FieldLastModified

	// FieldBody is the resource body from the last 200 response.
	FieldBody

	// FieldBodyDigest is the fingerprint of FieldBody.
	FieldBodyDigest
)

// String returns the field name for logging.
func (f Field) String() string {
	switch f {
	case FieldETag:
		return "etag"
	case FieldLastModified:
		return "last_modified"
	case FieldBody:
		return "body"
	case FieldBodyDigest:
		return "body_digest"
	default:
		return "unknown"
	}
}

// Entry holds everything cached about one resource. Fields are optional:
// a resource that has never answered 200 carries validators but no body.
// The field set is fixed so the byte-accounting invariant is enforced by
// the type rather than by convention.
type Entry struct {
	etag         []byte
	lastModified []byte
	body         []byte
	bodyDigest   []byte
}

// get returns the value of field f, or nil if absent.
func (e *Entry) get(f Field) []byte {
	switch f {
	case FieldETag:
		return e.etag
	case FieldLastModified:
		return e.lastModified
	case FieldBody:
		return e.body
	case FieldBodyDigest:
		return e.bodyDigest
	default:
		return nil
	}
}

// set overwrites field f and returns the byte delta against the previous
// value, so the owning cache keeps its accounting exact across overwrites.
func (e *Entry) set(f Field, value []byte) int64 {
	delta := int64(len(value))
	switch f {
	case FieldETag:
		delta -= int64(len(e.etag))
		e.etag = value
	case FieldLastModified:
		delta -= int64(len(e.lastModified))
		e.lastModified = value
	case FieldBody:
		delta -= int64(len(e.body))
		e.body = value
	case FieldBodyDigest:
		delta -= int64(len(e.bodyDigest))
		e.bodyDigest = value
	default:
		return 0
	}
	return delta
}

// size is the sum of the byte lengths of all present fields. This exact
// sum is what eviction recovers.
func (e *Entry) size() int64 {
	return int64(len(e.etag) + len(e.lastModified) + len(e.body) + len(e.bodyDigest))
}
